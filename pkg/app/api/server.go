// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
	"github.com/gsdclabs/gsdc-backend/pkg/auth"
	"github.com/gsdclabs/gsdc-backend/pkg/chain"
	"github.com/gsdclabs/gsdc-backend/pkg/config"
	"github.com/gsdclabs/gsdc-backend/pkg/contact"
	kycservice "github.com/gsdclabs/gsdc-backend/pkg/kyc/service"
	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
	"github.com/gsdclabs/gsdc-backend/pkg/minting"
	"github.com/gsdclabs/gsdc-backend/pkg/notify"
	"github.com/gsdclabs/gsdc-backend/pkg/pgutil"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
	"github.com/gsdclabs/gsdc-backend/pkg/rates"
	"github.com/gsdclabs/gsdc-backend/pkg/reserves"
	"github.com/gsdclabs/gsdc-backend/pkg/review"
	"github.com/gsdclabs/gsdc-backend/pkg/roles"
	"github.com/gsdclabs/gsdc-backend/pkg/wallet"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	chainClient, err := chain.NewClient(&cfg.Chain, logger)
	if err != nil {
		return fmt.Errorf("create chain client: %w", err)
	}
	defer chainClient.Close()

	adminWallet := wallet.NewSession(&cfg.Wallet, logger)

	applicants := s.openApplicantClient(logger)

	kycStore := kycstore.NewStore(db)

	kycSvc := kycservice.NewLog(
		kycservice.NewService(kycStore, chainClient, applicantAPI(applicants), logger),
		logger,
	)

	reviewSvc := review.NewLog(
		review.NewService(
			kycStore,
			adminWallet,
			chainClient,
			s.openSynchronizer(logger),
			s.openMintingClient(logger),
			notify.NewService(notify.NewStore(db), notify.NewSender(&cfg.Notification, logger), &cfg.Notification, logger),
			logger,
		),
		logger,
	)

	roleSvc := roles.NewService(roles.NewStore(db), logger)
	rateSvc := rates.NewService(rates.NewStore(db), logger)
	reserveSvc := reserves.NewService(reserves.NewStore(db), logger)
	contactSvc := contact.NewService(contact.NewStore(db), logger)

	stopSync := s.startProviderSync(kycStore, applicants, logger)
	defer stopSync()

	router := s.setupRouter(kycSvc, reviewSvc, roleSvc, rateSvc, reserveSvc, contactSvc, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// openApplicantClient returns nil when no provider is configured; the
// KYC service then skips applicant lookups.
func (s *Server) openApplicantClient(logger *zap.Logger) *provider.Client {
	if s.cfg.Provider.BaseURL == "" {
		logger.Info("Verification provider not configured, applicant lookups disabled")
		return nil
	}

	client, err := provider.NewClient(provider.ClientConfig{
		BaseURL:   s.cfg.Provider.BaseURL,
		AppToken:  s.cfg.Provider.AppToken,
		SecretKey: s.cfg.Provider.SecretKey,
		LevelName: s.cfg.Provider.LevelName,
		Timeout:   s.cfg.Provider.Timeout,
	}, logger)
	if err != nil {
		logger.Error("Failed to create provider client, applicant lookups disabled", zap.Error(err))
		return nil
	}
	return client
}

// applicantAPI keeps a nil *provider.Client from becoming a non-nil
// interface value.
func applicantAPI(client *provider.Client) kycservice.ApplicantAPI {
	if client == nil {
		return nil
	}
	return client
}

func (s *Server) openSynchronizer(logger *zap.Logger) review.Webhooks {
	if s.cfg.Provider.WebhookURL == "" {
		logger.Info("Webhook replay not configured")
		return nil
	}
	return provider.NewSynchronizer(
		s.cfg.Provider.WebhookURL,
		s.cfg.Provider.LevelName,
		s.cfg.Provider.Timeout,
		logger,
	)
}

func (s *Server) openMintingClient(logger *zap.Logger) review.Minter {
	if s.cfg.Minting.URL == "" {
		logger.Info("Credential minting not configured")
		return nil
	}
	return minting.NewClient(&s.cfg.Minting, logger)
}

// startProviderSync starts the periodic sweep that refreshes pending
// provider-backed requests. Returns a stopper for deterministic shutdown
// ordering.
func (s *Server) startProviderSync(store kycservice.Store, applicants *provider.Client, logger *zap.Logger) func() {
	if s.cfg.Provider.SyncInterval <= 0 || applicants == nil {
		return func() {}
	}

	poller := kycservice.NewStatusPoller(store, applicants, logger)
	poller.Start(s.cfg.Provider.SyncInterval)
	return poller.Stop
}

func (s *Server) setupRouter(
	kycSvc kycservice.Service,
	reviewSvc review.Service,
	roleSvc *roles.Service,
	rateSvc *rates.Service,
	reserveSvc *reserves.Service,
	contactSvc *contact.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Public endpoints
	r.Route("/api/kyc", func(r chi.Router) {
		kycservice.RegisterRoutes(r, kycSvc, logger)
	})
	r.Route("/api/contact", func(r chi.Router) {
		contact.RegisterRoutes(r, contactSvc, logger)
	})
	r.Route("/api/rates", func(r chi.Router) {
		rates.RegisterRoutes(r, rateSvc, logger)
	})
	r.Route("/api/reserves", func(r chi.Router) {
		reserves.RegisterRoutes(r, reserveSvc, logger)
	})

	// Provider webhook receiver
	r.Route("/webhooks", func(r chi.Router) {
		review.RegisterWebhookRoutes(r, reviewSvc, logger)
	})

	// Admin endpoints behind EIP-191 signature auth
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.RequireRole(roleSvc, string(roles.RoleAdmin), logger))

		r.Route("/kyc", func(r chi.Router) {
			kycservice.RegisterAdminRoutes(r, kycSvc, logger)
			review.RegisterAdminRoutes(r, reviewSvc, logger)
		})
		r.Route("/roles", func(r chi.Router) {
			roles.RegisterAdminRoutes(r, roleSvc, logger)
		})
		r.Route("/rates", func(r chi.Router) {
			rates.RegisterAdminRoutes(r, rateSvc, logger)
		})
		r.Route("/reserves", func(r chi.Router) {
			reserves.RegisterAdminRoutes(r, reserveSvc, logger)
		})
		r.Route("/contact", func(r chi.Router) {
			contact.RegisterAdminRoutes(r, contactSvc, logger)
		})
	})

	return r
}

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
)

const syncTimeout = 2 * time.Minute

// StatusPoller keeps pending provider-backed requests in sync with the
// verification provider. Clients poll the backend on fixed intervals, so
// the poller refreshes provider decisions server-side rather than on the
// request path.
type StatusPoller struct {
	store      Store
	applicants ApplicantAPI
	logger     *zap.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewStatusPoller creates a poller over the given store and provider API.
func NewStatusPoller(store Store, applicants ApplicantAPI, logger *zap.Logger) *StatusPoller {
	return &StatusPoller{
		store:      store,
		applicants: applicants,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// SyncOnce refreshes every pending provider-method request from the
// provider's applicant status. Individual lookup failures are logged and
// skipped; the sweep continues.
func (p *StatusPoller) SyncOnce(ctx context.Context) error {
	pending, err := p.store.ListRequests(ctx, kycstore.WithStatus(kyc.StatusPending))
	if err != nil {
		return fmt.Errorf("failed to list pending requests: %w", err)
	}

	var updated int
	for _, req := range pending {
		if req.Method != kyc.MethodProvider || req.ApplicantID == "" {
			continue
		}

		applicant, err := p.applicants.GetApplicantStatus(ctx, req.ApplicantID)
		if err != nil {
			p.logger.Warn("Applicant status lookup failed during sync",
				zap.String("request_id", req.ID),
				zap.String("applicant_id", req.ApplicantID),
				zap.Error(err))
			continue
		}
		if !applicant.Completed() {
			continue
		}

		status := kyc.StatusRejected
		reason := "Rejected by verification provider"
		if applicant.Approved() {
			status = kyc.StatusApproved
			reason = ""
		}

		if err := p.store.UpdateStatus(ctx, req.ID, status, reason, time.Now().UTC()); err != nil {
			p.logger.Warn("Failed to apply provider decision",
				zap.String("request_id", req.ID),
				zap.Error(err))
			continue
		}

		updated++
		p.logger.Info("Provider decision applied",
			zap.String("request_id", req.ID),
			zap.String("status", string(status)))
	}

	if updated > 0 {
		p.logger.Info("Provider status sync completed",
			zap.Int("pending_checked", len(pending)),
			zap.Int("updated", updated))
	}
	return nil
}

// Start runs periodic sync sweeps until Stop is called.
func (p *StatusPoller) Start(interval time.Duration) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		p.logger.Info("Started provider status sync", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
				if err := p.SyncOnce(ctx); err != nil {
					p.logger.Error("Provider status sync failed", zap.Error(err))
				}
				cancel()
			case <-p.stopCh:
				p.logger.Info("Stopping provider status sync")
				return
			}
		}
	}()
}

// Stop stops the periodic sync and waits for the sweep in flight.
// Safe to call more than once: shutdown paths commonly stop both
// inline and via defer.
func (p *StatusPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

// Package review implements the admin review workflow: on-chain status
// updates, database transitions, and the best-effort side calls that fan
// the decision out to downstream systems.
package review

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/internal/metrics"
	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	"github.com/gsdclabs/gsdc-backend/pkg/chain"
	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
	"github.com/gsdclabs/gsdc-backend/pkg/wallet"
)

var (
	ErrWalletNotProperlyConnected = errors.New("admin wallet is not properly connected")
	ErrMissingRejectionReason     = errors.New("a rejection reason is required")
)

// Store is the data-access surface the review workflow needs.
type Store interface {
	GetRequest(ctx context.Context, id string) (*kyc.Request, error)
	UpdateStatus(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error
	FindByApplicantID(ctx context.Context, address, applicantID string) (*kyc.Request, error)
}

// Wallet is the admin signing session.
type Wallet interface {
	Connect(ctx context.Context) (common.Address, error)
	Transactor(ctx context.Context, chainID *big.Int) (*bind.TransactOpts, error)
}

// Chain is the registry-contract client surface used when pushing a
// decision on chain.
type Chain interface {
	ChainID() *big.Int
	FallbackGasLimit() uint64
	EstimateUpdateKYCStatus(ctx context.Context, from, user common.Address, approved bool) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	UpdateKYCStatus(ctx context.Context, opts *bind.TransactOpts, user common.Address, approved bool) (*types.Transaction, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Webhooks replays review outcomes as synthetic provider events.
type Webhooks interface {
	Replay(ctx context.Context, ev *provider.ReviewEvent) error
}

// Minter issues the soulbound credential after approval.
type Minter interface {
	MintCredential(ctx context.Context, address string) error
}

// Notifier sends the decision email.
type Notifier interface {
	SendKYCDecision(ctx context.Context, to string, approved bool, reason string) error
}

// Service defines the interface for the review business logic
type Service interface {
	Approve(ctx context.Context, requestID string) (*kyc.Request, error)
	Reject(ctx context.Context, requestID, reason string) (*kyc.Request, error)
	ApplyProviderReview(ctx context.Context, ev *provider.WebhookEvent) error
}

type reviewService struct {
	store    Store
	wallet   Wallet
	chain    Chain
	webhooks Webhooks
	minter   Minter
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates the review service. webhooks, minter, and notifier
// may be nil; the corresponding side calls are then skipped.
func NewService(store Store, wallet Wallet, chainClient Chain, webhooks Webhooks, minter Minter, notifier Notifier, logger *zap.Logger) Service {
	return &reviewService{
		store:    store,
		wallet:   wallet,
		chain:    chainClient,
		webhooks: webhooks,
		minter:   minter,
		notifier: notifier,
		logger:   logger,
	}
}

// Approve runs the full approval workflow: on-chain update first, then
// the database transition, then the best-effort side calls.
func (s *reviewService) Approve(ctx context.Context, requestID string) (*kyc.Request, error) {
	return s.review(ctx, requestID, true, "")
}

// Reject mirrors Approve with approved=false. The reason is required and
// refused locally before anything is touched.
func (s *reviewService) Reject(ctx context.Context, requestID, reason string) (*kyc.Request, error) {
	if reason == "" {
		return nil, apperrors.BadRequestError(ErrMissingRejectionReason, "a rejection reason is required")
	}
	return s.review(ctx, requestID, false, reason)
}

func (s *reviewService) review(ctx context.Context, requestID string, approved bool, reason string) (*kyc.Request, error) {
	start := time.Now()
	decision := decisionLabel(approved)

	req, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.ResourceNotFoundError(err, "kyc request not found")
	}

	user := common.HexToAddress(req.UserAddress)

	if err := s.pushOnChain(ctx, user, approved); err != nil {
		metrics.ReviewsTotal.WithLabelValues(decision, "failed").Inc()
		return nil, err
	}

	status := kyc.StatusApproved
	if !approved {
		status = kyc.StatusRejected
	}
	if err := s.store.UpdateStatus(ctx, req.ID, status, reason, time.Now().UTC()); err != nil {
		// The chain already holds the new status; the next status read
		// reconciles the record from there.
		metrics.ReviewsTotal.WithLabelValues(decision, "failed").Inc()
		return nil, fmt.Errorf("failed to persist review decision: %w", err)
	}

	s.runSideCalls(ctx, s.decisionSideCalls(req, approved, reason))

	updated, err := s.store.GetRequest(ctx, req.ID)
	if err != nil {
		updated = req
		updated.Status = status
	}

	metrics.ReviewsTotal.WithLabelValues(decision, "completed").Inc()
	metrics.ReviewDuration.WithLabelValues(decision).Observe(time.Since(start).Seconds())

	s.logger.Info("Review decision completed",
		zap.String("request_id", req.ID),
		zap.String("address", req.UserAddress),
		zap.String("decision", decision))
	return updated, nil
}

// pushOnChain sends updateKYCStatus and waits for the receipt. Failures
// are classified into an admin-facing message.
func (s *reviewService) pushOnChain(ctx context.Context, user common.Address, approved bool) error {
	from, err := s.wallet.Connect(ctx)
	if err != nil {
		return walletError(err)
	}

	opts, err := s.wallet.Transactor(ctx, s.chain.ChainID())
	if err != nil {
		return walletError(err)
	}

	estimate, err := s.chain.EstimateUpdateKYCStatus(ctx, from, user, approved)
	if err != nil {
		// An estimation failure usually means the call would revert.
		txErr := chain.ClassifyTxError(err)
		if txErr.Kind != chain.TxErrNetwork {
			metrics.TxErrorsTotal.WithLabelValues(string(txErr.Kind)).Inc()
			return apperrors.DependencyError(txErr, txErr.Message())
		}
		s.logger.Warn("Gas estimation unavailable, using fallback limit", zap.Error(err))
		estimate = 0
	}
	opts.GasLimit = chain.LimitWithMargin(estimate, s.chain.FallbackGasLimit())

	if price, err := s.chain.SuggestGasPrice(ctx); err != nil {
		s.logger.Warn("Gas price suggestion unavailable, deferring to node default", zap.Error(err))
	} else {
		opts.GasPrice = chain.PriceWithMargin(price)
	}

	tx, err := s.chain.UpdateKYCStatus(ctx, opts, user, approved)
	if err != nil {
		txErr := chain.ClassifyTxError(err)
		metrics.TxErrorsTotal.WithLabelValues(string(txErr.Kind)).Inc()
		metrics.TransactionsSent.WithLabelValues("failed").Inc()
		return apperrors.DependencyError(txErr, txErr.Message())
	}

	receipt, err := s.chain.WaitMined(ctx, tx)
	if err != nil {
		txErr := chain.ClassifyTxError(err)
		metrics.TxErrorsTotal.WithLabelValues(string(txErr.Kind)).Inc()
		metrics.TransactionsSent.WithLabelValues("reverted").Inc()
		return apperrors.DependencyError(txErr, txErr.Message())
	}

	metrics.TransactionsSent.WithLabelValues("confirmed").Inc()
	metrics.GasUsed.WithLabelValues("update_kyc_status").Observe(float64(receipt.GasUsed))

	s.logger.Info("On-chain status update confirmed",
		zap.String("address", user.Hex()),
		zap.Bool("approved", approved),
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.Uint64("gas_used", receipt.GasUsed))
	return nil
}

// decisionSideCalls builds the fan-out steps for an admin decision:
// webhook replay, credential mint (approval only), and the email. Replay
// and minting apply to manually-reviewed requests only; provider-backed
// requests already exist in the provider's own pipeline.
func (s *reviewService) decisionSideCalls(req *kyc.Request, approved bool, reason string) []SideCall {
	var calls []SideCall

	manual := req.Method == kyc.MethodManual
	if manual && s.webhooks != nil {
		calls = append(calls, SideCall{
			Name: "webhook_replay",
			Run: func(ctx context.Context) error {
				return s.webhooks.Replay(ctx, &provider.ReviewEvent{
					UserAddress: req.UserAddress,
					ApplicantID: req.ApplicantID,
					Approved:    approved,
					Reason:      reason,
				})
			},
		})
	}
	if manual && approved && s.minter != nil {
		calls = append(calls, SideCall{
			Name: "mint_credential",
			Run: func(ctx context.Context) error {
				return s.minter.MintCredential(ctx, req.UserAddress)
			},
		})
	}
	calls = append(calls, s.emailSideCall(req, approved, reason)...)
	return calls
}

func (s *reviewService) emailSideCall(req *kyc.Request, approved bool, reason string) []SideCall {
	if s.notifier == nil || req.Email == "" {
		return nil
	}
	return []SideCall{{
		Name: "decision_email",
		Run: func(ctx context.Context) error {
			return s.notifier.SendKYCDecision(ctx, req.Email, approved, reason)
		},
	}}
}

// ApplyProviderReview applies an inbound applicant-reviewed webhook event:
// the matching record transitions per the provider verdict and the chain
// is updated to match. Webhook replay and minting are the provider's own
// pipeline for automated reviews, so only the email side call runs here.
func (s *reviewService) ApplyProviderReview(ctx context.Context, ev *provider.WebhookEvent) error {
	if ev.Type != provider.EventTypeApplicantReviewed {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "ignored").Inc()
		s.logger.Debug("Ignoring provider webhook event", zap.String("type", ev.Type))
		return nil
	}

	req, err := s.store.FindByApplicantID(ctx, ev.ExternalUserID, ev.ApplicantID)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "unmatched").Inc()
		return apperrors.ResourceNotFoundError(err, "no kyc request matches the webhook event")
	}

	approved := ev.ReviewResult.ReviewAnswer == "GREEN"
	status := kyc.StatusApproved
	reason := ""
	if !approved {
		status = kyc.StatusRejected
		reason = ev.ModerationComment
		if reason == "" {
			reason = "Rejected by verification provider"
		}
	}

	if err := s.pushOnChain(ctx, common.HexToAddress(req.UserAddress), approved); err != nil {
		// The provider retries undelivered webhooks; surfacing the error
		// turns that retry into our retry.
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "failed").Inc()
		return err
	}

	if err := s.store.UpdateStatus(ctx, req.ID, status, reason, time.Now().UTC()); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "failed").Inc()
		return fmt.Errorf("failed to persist provider decision: %w", err)
	}

	s.runSideCalls(ctx, s.emailSideCall(req, approved, reason))

	metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "applied").Inc()
	s.logger.Info("Provider review applied",
		zap.String("request_id", req.ID),
		zap.String("applicant_id", ev.ApplicantID),
		zap.String("status", string(status)))
	return nil
}

// walletError wraps a wallet session failure with the admin-facing
// message for its case. Every variant still matches
// ErrWalletNotProperlyConnected for callers that only care whether the
// wallet was usable.
func walletError(err error) error {
	wrapped := errors.Join(ErrWalletNotProperlyConnected, err)
	switch {
	case errors.Is(err, wallet.ErrConnectionPending):
		return apperrors.UnAuthorizedError(wrapped,
			"Another wallet connection attempt is already in progress. Please retry in a moment.")
	case errors.Is(err, wallet.ErrWalletNotConfigured):
		return apperrors.UnAuthorizedError(wrapped,
			"The admin signing wallet is not configured on the server.")
	default:
		return apperrors.UnAuthorizedError(wrapped, ErrWalletNotProperlyConnected.Error())
	}
}

func decisionLabel(approved bool) string {
	if approved {
		return "approve"
	}
	return "reject"
}

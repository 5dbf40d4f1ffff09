package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
)

const serviceName = "ReviewService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the review Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Approve wraps the service method with logging
func (ls *logService) Approve(ctx context.Context, requestID string) (req *kyc.Request, err error) {
	start := time.Now()

	ls.logger.Info("Approve started",
		zap.String("service", serviceName),
		zap.String("method", "Approve"),
		zap.String("request_id", requestID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Approve failed",
				zap.String("service", serviceName),
				zap.String("method", "Approve"),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Approve completed",
				zap.String("service", serviceName),
				zap.String("method", "Approve"),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Approve(ctx, requestID)
}

// Reject wraps the service method with logging
func (ls *logService) Reject(ctx context.Context, requestID, reason string) (req *kyc.Request, err error) {
	start := time.Now()

	ls.logger.Info("Reject started",
		zap.String("service", serviceName),
		zap.String("method", "Reject"),
		zap.String("request_id", requestID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Reject failed",
				zap.String("service", serviceName),
				zap.String("method", "Reject"),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Reject completed",
				zap.String("service", serviceName),
				zap.String("method", "Reject"),
				zap.String("request_id", requestID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Reject(ctx, requestID, reason)
}

// ApplyProviderReview wraps the service method with logging
func (ls *logService) ApplyProviderReview(ctx context.Context, ev *provider.WebhookEvent) (err error) {
	start := time.Now()

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("ApplyProviderReview failed",
				zap.String("service", serviceName),
				zap.String("method", "ApplyProviderReview"),
				zap.String("applicant_id", ev.ApplicantID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("ApplyProviderReview completed",
				zap.String("service", serviceName),
				zap.String("method", "ApplyProviderReview"),
				zap.String("applicant_id", ev.ApplicantID),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.ApplyProviderReview(ctx, ev)
}

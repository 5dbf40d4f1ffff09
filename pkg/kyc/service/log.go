package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
)

const serviceName = "KYCService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the KYC Service.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// Submit wraps the service method with logging
func (ls *logService) Submit(ctx context.Context, data *kyc.SubmissionData) (req *kyc.Request, err error) {
	start := time.Now()

	ls.logger.Info("Submit started",
		zap.String("service", serviceName),
		zap.String("method", "Submit"),
		zap.String("address", data.UserAddress),
		zap.String("verification_method", string(data.Method)),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("Submit failed",
				zap.String("service", serviceName),
				zap.String("method", "Submit"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("Submit completed",
				zap.String("service", serviceName),
				zap.String("method", "Submit"),
				zap.String("request_id", req.ID),
				zap.String("status", string(req.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.Submit(ctx, data)
}

// SubmitProvider wraps the service method with logging
func (ls *logService) SubmitProvider(ctx context.Context, data *kyc.SubmissionData) (req *kyc.Request, err error) {
	start := time.Now()

	ls.logger.Info("SubmitProvider started",
		zap.String("service", serviceName),
		zap.String("method", "SubmitProvider"),
		zap.String("address", data.UserAddress),
		zap.String("applicant_id", data.ApplicantID),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("SubmitProvider failed",
				zap.String("service", serviceName),
				zap.String("method", "SubmitProvider"),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("SubmitProvider completed",
				zap.String("service", serviceName),
				zap.String("method", "SubmitProvider"),
				zap.String("request_id", req.ID),
				zap.String("status", string(req.Status)),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.SubmitProvider(ctx, data)
}

// Status wraps the read path with debug-level logging; it is on the hot
// polling path, so entry logs stay quiet.
func (ls *logService) Status(ctx context.Context, address string) *kyc.StatusResult {
	start := time.Now()
	result := ls.svc.Status(ctx, address)

	ls.logger.Debug("Status resolved",
		zap.String("service", serviceName),
		zap.String("method", "Status"),
		zap.String("address", address),
		zap.String("status", string(result.Status)),
		zap.String("source", result.Source),
		zap.Duration("duration", time.Since(start)),
	)
	return result
}

func (ls *logService) ListRequests(ctx context.Context, status *kyc.Status) ([]*kyc.Request, error) {
	return ls.svc.ListRequests(ctx, status)
}

func (ls *logService) Stats(ctx context.Context) (*kyc.Stats, error) {
	return ls.svc.Stats(ctx)
}

// Package service implements the KYC application service: submissions,
// listings, stats, and the reconciled status read path.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/internal/metrics"
	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	"github.com/gsdclabs/gsdc-backend/pkg/auth"
	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
)

var (
	ErrInvalidAddress = errors.New("invalid wallet address")
	ErrMissingName    = errors.New("first and last name are required")
)

// Store is the narrow data-access interface for the KYC service.
type Store interface {
	CreateRequest(ctx context.Context, req *kyc.Request) error
	GetRequest(ctx context.Context, id string) (*kyc.Request, error)
	LatestByAddress(ctx context.Context, address string) (*kyc.Request, error)
	LatestByAddressAndMethod(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error)
	ListRequests(ctx context.Context, opts ...kycstore.QueryOption) ([]*kyc.Request, error)
	UpdateStatus(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error
	UpdateSubmission(ctx context.Context, id string, data *kyc.SubmissionData) error
	Stats(ctx context.Context) (*kyc.Stats, error)
}

// ChainReader reads the on-chain verification flag.
type ChainReader interface {
	Approved(ctx context.Context, addr common.Address) (bool, error)
}

// ApplicantAPI reads applicant state from the verification provider.
type ApplicantAPI interface {
	GetApplicantStatus(ctx context.Context, applicantID string) (*provider.ApplicantStatus, error)
}

// Service defines the interface for the KYC business logic
type Service interface {
	Submit(ctx context.Context, data *kyc.SubmissionData) (*kyc.Request, error)
	SubmitProvider(ctx context.Context, data *kyc.SubmissionData) (*kyc.Request, error)
	Status(ctx context.Context, address string) *kyc.StatusResult
	ListRequests(ctx context.Context, status *kyc.Status) ([]*kyc.Request, error)
	Stats(ctx context.Context) (*kyc.Stats, error)
}

type kycService struct {
	store      Store
	chain      ChainReader
	applicants ApplicantAPI
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewService creates a new KYC service. chain and applicants may be nil;
// the corresponding lookups are then skipped.
func NewService(store Store, chain ChainReader, applicants ApplicantAPI, logger *zap.Logger) Service {
	return &kycService{
		store:      store,
		chain:      chain,
		applicants: applicants,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Submit handles a manual verification form submission.
//
// When a record already exists for the address, the newest record is
// marked APPROVED with the review timestamp set instead of inserting a
// duplicate. This mirrors the long-standing duplicate-submission behavior
// the admin tooling depends on.
func (s *kycService) Submit(ctx context.Context, data *kyc.SubmissionData) (*kyc.Request, error) {
	if err := s.validate.Struct(data); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid submission payload")
	}
	if !auth.ValidateEVMAddress(data.UserAddress) {
		return nil, apperrors.BadRequestError(ErrInvalidAddress, "invalid wallet address")
	}
	if data.Method == "" {
		data.Method = kyc.MethodManual
	}
	if data.Method == kyc.MethodManual && (data.FirstName == "" || data.LastName == "") {
		return nil, apperrors.BadRequestError(ErrMissingName, "first and last name are required")
	}

	address := strings.ToLower(data.UserAddress)

	latest, err := s.store.LatestByAddress(ctx, address)
	if err != nil && !errors.Is(err, kycstore.ErrRequestNotFound) {
		return nil, fmt.Errorf("failed to look up existing request: %w", err)
	}

	if latest != nil {
		if err := s.store.UpdateStatus(ctx, latest.ID, kyc.StatusApproved, "", time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to update existing request: %w", err)
		}
		s.logger.Info("Existing KYC record updated on resubmission",
			zap.String("request_id", latest.ID),
			zap.String("address", address))
		return s.store.GetRequest(ctx, latest.ID)
	}

	status := kyc.StatusPending
	if data.ApplicantID != "" && s.applicants != nil {
		applicant, err := s.applicants.GetApplicantStatus(ctx, data.ApplicantID)
		if err != nil {
			s.logger.Warn("Applicant status lookup failed",
				zap.String("applicant_id", data.ApplicantID),
				zap.Error(err))
		} else if applicant.Completed() {
			status = kyc.StatusApproved
		}
	}

	req := requestFromSubmission(address, data, status)
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create kyc request: %w", err)
	}

	metrics.KYCSubmissionsTotal.WithLabelValues(string(req.Method)).Inc()
	return req, nil
}

// SubmitProvider handles the automated provider-backed flow: the
// (address, provider) record is updated in place when one exists,
// resetting its status to PENDING. This is the REJECTED -> PENDING
// resubmission path.
func (s *kycService) SubmitProvider(ctx context.Context, data *kyc.SubmissionData) (*kyc.Request, error) {
	if err := s.validate.Struct(data); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid submission payload")
	}
	if !auth.ValidateEVMAddress(data.UserAddress) {
		return nil, apperrors.BadRequestError(ErrInvalidAddress, "invalid wallet address")
	}
	data.Method = kyc.MethodProvider
	address := strings.ToLower(data.UserAddress)

	existing, err := s.store.LatestByAddressAndMethod(ctx, address, kyc.MethodProvider)
	if err != nil && !errors.Is(err, kycstore.ErrRequestNotFound) {
		return nil, fmt.Errorf("failed to look up existing provider request: %w", err)
	}

	if existing != nil {
		if err := s.store.UpdateSubmission(ctx, existing.ID, data); err != nil {
			return nil, fmt.Errorf("failed to refresh provider request: %w", err)
		}
		metrics.KYCSubmissionsTotal.WithLabelValues(string(kyc.MethodProvider)).Inc()
		return s.store.GetRequest(ctx, existing.ID)
	}

	req := requestFromSubmission(address, data, kyc.StatusPending)
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create provider request: %w", err)
	}

	metrics.KYCSubmissionsTotal.WithLabelValues(string(kyc.MethodProvider)).Inc()
	return req, nil
}

func (s *kycService) ListRequests(ctx context.Context, status *kyc.Status) ([]*kyc.Request, error) {
	var opts []kycstore.QueryOption
	if status != nil {
		if !status.Valid() {
			return nil, apperrors.BadRequestError(nil, "unknown status filter")
		}
		opts = append(opts, kycstore.WithStatus(*status))
	}
	return s.store.ListRequests(ctx, opts...)
}

func (s *kycService) Stats(ctx context.Context) (*kyc.Stats, error) {
	return s.store.Stats(ctx)
}

func requestFromSubmission(address string, data *kyc.SubmissionData, status kyc.Status) *kyc.Request {
	return &kyc.Request{
		UserAddress:  address,
		Email:        data.Email,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		DateOfBirth:  data.DateOfBirth,
		Nationality:  data.Nationality,
		DocumentType: data.DocumentType,
		DocumentURL:  data.DocumentURL,
		Method:       data.Method,
		ApplicantID:  data.ApplicantID,
		ProviderData: data.ProviderData,
		Status:       status,
		SubmittedAt:  time.Now().UTC(),
	}
}

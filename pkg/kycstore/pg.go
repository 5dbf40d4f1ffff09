package kycstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the KYC request store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateRequest(ctx context.Context, req *kyc.Request) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.UserAddress = strings.ToLower(req.UserAddress)
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}

	dao := toRequestDao(req)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create kyc request: %w", err)
	}

	return nil
}

func (s *pgStore) GetRequest(ctx context.Context, id string) (*kyc.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get kyc request: %w", err)
	}

	return toRequest(dao), nil
}

// LatestByAddress returns the newest request for the address across all
// verification methods.
func (s *pgStore) LatestByAddress(ctx context.Context, address string) (*kyc.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_address = ?", strings.ToLower(address)).
		Order("submitted_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get latest kyc request: %w", err)
	}

	return toRequest(dao), nil
}

func (s *pgStore) LatestByAddressAndMethod(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_address = ?", strings.ToLower(address)).
		Where("verification_method = ?", string(method)).
		Order("submitted_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get latest kyc request by method: %w", err)
	}

	return toRequest(dao), nil
}

func (s *pgStore) FindByApplicantID(ctx context.Context, address, applicantID string) (*kyc.Request, error) {
	dao := new(RequestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_address = ?", strings.ToLower(address)).
		Where("applicant_id = ?", applicantID).
		Order("submitted_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find kyc request by applicant id: %w", err)
	}

	return toRequest(dao), nil
}

func (s *pgStore) ListRequests(ctx context.Context, opts ...QueryOption) ([]*kyc.Request, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var daos []RequestDao
	query := s.db.NewSelect().
		Model(&daos).
		Order("submitted_at DESC")

	if options.Status != nil {
		query = query.Where("status = ?", string(*options.Status))
	}
	if options.Limit != nil {
		query = query.Limit(*options.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list kyc requests: %w", err)
	}

	requests := make([]*kyc.Request, len(daos))
	for i := range daos {
		requests[i] = toRequest(&daos[i])
	}
	return requests, nil
}

func (s *pgStore) UpdateStatus(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error {
	query := s.db.NewUpdate().
		Model((*RequestDao)(nil)).
		Set("status = ?", string(status)).
		Set("reviewed_at = ?", reviewedAt).
		Where("id = ?", id)

	if reason != "" {
		query = query.Set("rejection_reason = ?", reason)
	} else if status == kyc.StatusApproved {
		// A re-approved record must not carry a stale rejection reason.
		query = query.Set("rejection_reason = NULL")
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update kyc request status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// UpdateSubmission refreshes a record with resubmitted data, resetting the
// status to PENDING and the submission timestamp to now. This is the
// REJECTED -> PENDING resubmission path.
func (s *pgStore) UpdateSubmission(ctx context.Context, id string, data *kyc.SubmissionData) error {
	query := s.db.NewUpdate().
		Model((*RequestDao)(nil)).
		Set("status = ?", string(kyc.StatusPending)).
		Set("submitted_at = NOW()").
		Set("reviewed_at = NULL").
		Set("rejection_reason = NULL").
		Where("id = ?", id)

	if data.Email != "" {
		query = query.Set("email = ?", data.Email)
	}
	if data.FirstName != "" {
		query = query.Set("first_name = ?", data.FirstName)
	}
	if data.LastName != "" {
		query = query.Set("last_name = ?", data.LastName)
	}
	if data.DateOfBirth != "" {
		query = query.Set("date_of_birth = ?", data.DateOfBirth)
	}
	if data.Nationality != "" {
		query = query.Set("nationality = ?", data.Nationality)
	}
	if data.DocumentType != "" {
		query = query.Set("document_type = ?", data.DocumentType)
	}
	if data.DocumentURL != "" {
		query = query.Set("document_url = ?", data.DocumentURL)
	}
	if data.ApplicantID != "" {
		query = query.Set("applicant_id = ?", data.ApplicantID)
	}
	if len(data.ProviderData) > 0 {
		query = query.Set("provider_data = ?", data.ProviderData)
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update kyc submission: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (s *pgStore) Stats(ctx context.Context) (*kyc.Stats, error) {
	var rows []struct {
		Status string `bun:"status"`
		Count  int    `bun:"count"`
	}

	err := s.db.NewSelect().
		Model((*RequestDao)(nil)).
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		Group("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("failed to get kyc stats: %w", err)
	}

	stats := &kyc.Stats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch kyc.Status(row.Status) {
		case kyc.StatusPending:
			stats.Pending = row.Count
		case kyc.StatusApproved:
			stats.Approved = row.Count
		case kyc.StatusRejected:
			stats.Rejected = row.Count
		}
	}
	return stats, nil
}

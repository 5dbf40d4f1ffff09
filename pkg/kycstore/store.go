// Package kycstore persists KYC verification requests in PostgreSQL.
package kycstore

import (
	"context"
	"errors"
	"time"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
)

// ErrRequestNotFound is returned when a request lookup finds no matching record.
var ErrRequestNotFound = errors.New("kyc request not found")

// Store defines the interface for KYC request persistence
type Store interface {
	CreateRequest(ctx context.Context, req *kyc.Request) error
	GetRequest(ctx context.Context, id string) (*kyc.Request, error)
	LatestByAddress(ctx context.Context, address string) (*kyc.Request, error)
	LatestByAddressAndMethod(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error)
	FindByApplicantID(ctx context.Context, address, applicantID string) (*kyc.Request, error)
	ListRequests(ctx context.Context, opts ...QueryOption) ([]*kyc.Request, error)
	UpdateStatus(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error
	UpdateSubmission(ctx context.Context, id string, data *kyc.SubmissionData) error
	Stats(ctx context.Context) (*kyc.Stats, error)
}

// QueryOptions defines options for listing requests
type QueryOptions struct {
	Status *kyc.Status
	Limit  *int
}

// QueryOption is a functional option for listing requests
type QueryOption func(*QueryOptions)

// WithStatus sets the status filter
func WithStatus(status kyc.Status) QueryOption {
	return func(opts *QueryOptions) {
		opts.Status = &status
	}
}

// WithLimit caps the number of returned rows
func WithLimit(limit int) QueryOption {
	return func(opts *QueryOptions) {
		opts.Limit = &limit
	}
}

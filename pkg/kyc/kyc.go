// Package kyc defines the KYC domain model: verification requests, the
// status enum, and aggregate stats.
package kyc

import "time"

// Status is the verification state of a wallet address.
type Status string

const (
	StatusNotSubmitted Status = "NOT_SUBMITTED"
	StatusPending      Status = "PENDING"
	StatusApproved     Status = "APPROVED"
	StatusRejected     Status = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotSubmitted, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Method identifies how a request was verified.
type Method string

const (
	// MethodManual is the manual document-upload flow reviewed by an admin.
	MethodManual Method = "manual"
	// MethodProvider is the automated third-party verification flow.
	MethodProvider Method = "provider"
)

// Request is one verification attempt for a wallet address.
// At most one record per (address, method) is treated as current;
// lookups order by submission time descending and take the newest.
type Request struct {
	ID              string
	UserAddress     string // lower-cased hex
	Email           string
	FirstName       string
	LastName        string
	DateOfBirth     string
	Nationality     string
	DocumentType    string
	DocumentURL     string
	Method          Method
	ApplicantID     string
	ProviderData    []byte // raw provider payload, if any
	Status          Status
	RejectionReason string
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
}

// SubmissionData carries the fields of a new or resubmitted request.
type SubmissionData struct {
	UserAddress  string `json:"user_address" validate:"required"`
	Email        string `json:"email" validate:"omitempty,email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	DateOfBirth  string `json:"date_of_birth"`
	Nationality  string `json:"nationality"`
	DocumentType string `json:"document_type"`
	DocumentURL  string `json:"document_url"`
	Method       Method `json:"method"`
	ApplicantID  string `json:"applicant_id"`
	ProviderData []byte `json:"provider_data,omitempty"`
}

// StatusResult is the reconciled status for an address, with the backing
// record when one exists.
type StatusResult struct {
	Address string   `json:"address"`
	Status  Status   `json:"status"`
	Source  string   `json:"source"` // "record", "chain", or "default"
	Request *Request `json:"request,omitempty"`
}

// Stats holds aggregate request counts for the admin dashboard.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

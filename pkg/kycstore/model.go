package kycstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
)

// RequestDao is a data access object that maps directly to the 'kyc_requests' table in PostgreSQL.
type RequestDao struct {
	bun.BaseModel   `bun:"table:kyc_requests,alias:kr"`
	ID              string     `bun:"id,pk,type:uuid"`
	UserAddress     string     `bun:"user_address,notnull,type:varchar(42)"`
	Email           *string    `bun:"email,type:varchar(320)"`
	FirstName       *string    `bun:"first_name,type:varchar(100)"`
	LastName        *string    `bun:"last_name,type:varchar(100)"`
	DateOfBirth     *string    `bun:"date_of_birth,type:varchar(10)"`
	Nationality     *string    `bun:"nationality,type:varchar(100)"`
	DocumentType    *string    `bun:"document_type,type:varchar(50)"`
	DocumentURL     *string    `bun:"document_url,type:text"`
	Method          string     `bun:"verification_method,notnull,type:varchar(20)"`
	ApplicantID     *string    `bun:"applicant_id,type:varchar(64)"`
	ProviderData    []byte     `bun:"provider_data,nullzero,type:jsonb"`
	Status          string     `bun:"status,notnull,type:varchar(20)"`
	RejectionReason *string    `bun:"rejection_reason,type:text"`
	SubmittedAt     time.Time  `bun:"submitted_at,nullzero,default:current_timestamp"`
	ReviewedAt      *time.Time `bun:"reviewed_at"`
}

// toRequestDao converts a kyc.Request to RequestDao.
func toRequestDao(req *kyc.Request) *RequestDao {
	dao := &RequestDao{
		ID:          req.ID,
		UserAddress: req.UserAddress,
		Method:      string(req.Method),
		Status:      string(req.Status),
		SubmittedAt: req.SubmittedAt,
		ReviewedAt:  req.ReviewedAt,
	}

	if req.Email != "" {
		dao.Email = &req.Email
	}
	if req.FirstName != "" {
		dao.FirstName = &req.FirstName
	}
	if req.LastName != "" {
		dao.LastName = &req.LastName
	}
	if req.DateOfBirth != "" {
		dao.DateOfBirth = &req.DateOfBirth
	}
	if req.Nationality != "" {
		dao.Nationality = &req.Nationality
	}
	if req.DocumentType != "" {
		dao.DocumentType = &req.DocumentType
	}
	if req.DocumentURL != "" {
		dao.DocumentURL = &req.DocumentURL
	}
	if req.ApplicantID != "" {
		dao.ApplicantID = &req.ApplicantID
	}
	if len(req.ProviderData) > 0 {
		dao.ProviderData = req.ProviderData
	}
	if req.RejectionReason != "" {
		dao.RejectionReason = &req.RejectionReason
	}

	return dao
}

// toRequest converts a RequestDao to kyc.Request.
func toRequest(dao *RequestDao) *kyc.Request {
	req := &kyc.Request{
		ID:          dao.ID,
		UserAddress: dao.UserAddress,
		Method:      kyc.Method(dao.Method),
		Status:      kyc.Status(dao.Status),
		SubmittedAt: dao.SubmittedAt,
		ReviewedAt:  dao.ReviewedAt,
	}

	if dao.Email != nil {
		req.Email = *dao.Email
	}
	if dao.FirstName != nil {
		req.FirstName = *dao.FirstName
	}
	if dao.LastName != nil {
		req.LastName = *dao.LastName
	}
	if dao.DateOfBirth != nil {
		req.DateOfBirth = *dao.DateOfBirth
	}
	if dao.Nationality != nil {
		req.Nationality = *dao.Nationality
	}
	if dao.DocumentType != nil {
		req.DocumentType = *dao.DocumentType
	}
	if dao.DocumentURL != nil {
		req.DocumentURL = *dao.DocumentURL
	}
	if dao.ApplicantID != nil {
		req.ApplicantID = *dao.ApplicantID
	}
	if len(dao.ProviderData) > 0 {
		req.ProviderData = dao.ProviderData
	}
	if dao.RejectionReason != nil {
		req.RejectionReason = *dao.RejectionReason
	}

	return req
}

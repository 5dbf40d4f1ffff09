package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/kycstore"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
)

const testAddress = "0x1234567890abcdef1234567890abcdef12345678"

type mockStore struct {
	createRequestFunc            func(ctx context.Context, req *kyc.Request) error
	getRequestFunc               func(ctx context.Context, id string) (*kyc.Request, error)
	latestByAddressFunc          func(ctx context.Context, address string) (*kyc.Request, error)
	latestByAddressAndMethodFunc func(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error)
	listRequestsFunc             func(ctx context.Context, opts ...kycstore.QueryOption) ([]*kyc.Request, error)
	updateStatusFunc             func(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error
	updateSubmissionFunc         func(ctx context.Context, id string, data *kyc.SubmissionData) error
	statsFunc                    func(ctx context.Context) (*kyc.Stats, error)
}

func (m *mockStore) CreateRequest(ctx context.Context, req *kyc.Request) error {
	if m.createRequestFunc != nil {
		return m.createRequestFunc(ctx, req)
	}
	req.ID = "generated-id"
	return nil
}

func (m *mockStore) GetRequest(ctx context.Context, id string) (*kyc.Request, error) {
	if m.getRequestFunc != nil {
		return m.getRequestFunc(ctx, id)
	}
	return nil, kycstore.ErrRequestNotFound
}

func (m *mockStore) LatestByAddress(ctx context.Context, address string) (*kyc.Request, error) {
	if m.latestByAddressFunc != nil {
		return m.latestByAddressFunc(ctx, address)
	}
	return nil, kycstore.ErrRequestNotFound
}

func (m *mockStore) LatestByAddressAndMethod(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error) {
	if m.latestByAddressAndMethodFunc != nil {
		return m.latestByAddressAndMethodFunc(ctx, address, method)
	}
	return nil, kycstore.ErrRequestNotFound
}

func (m *mockStore) ListRequests(ctx context.Context, opts ...kycstore.QueryOption) ([]*kyc.Request, error) {
	if m.listRequestsFunc != nil {
		return m.listRequestsFunc(ctx, opts...)
	}
	return nil, nil
}

func (m *mockStore) UpdateStatus(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, reason, reviewedAt)
	}
	return nil
}

func (m *mockStore) UpdateSubmission(ctx context.Context, id string, data *kyc.SubmissionData) error {
	if m.updateSubmissionFunc != nil {
		return m.updateSubmissionFunc(ctx, id, data)
	}
	return nil
}

func (m *mockStore) Stats(ctx context.Context) (*kyc.Stats, error) {
	if m.statsFunc != nil {
		return m.statsFunc(ctx)
	}
	return &kyc.Stats{}, nil
}

type mockChain struct {
	approvedFunc func(ctx context.Context, addr common.Address) (bool, error)
}

func (m *mockChain) Approved(ctx context.Context, addr common.Address) (bool, error) {
	if m.approvedFunc != nil {
		return m.approvedFunc(ctx, addr)
	}
	return false, nil
}

type mockApplicantAPI struct {
	getApplicantStatusFunc func(ctx context.Context, applicantID string) (*provider.ApplicantStatus, error)
}

func (m *mockApplicantAPI) GetApplicantStatus(ctx context.Context, applicantID string) (*provider.ApplicantStatus, error) {
	if m.getApplicantStatusFunc != nil {
		return m.getApplicantStatusFunc(ctx, applicantID)
	}
	return nil, errors.New("not configured")
}

func validSubmission() *kyc.SubmissionData {
	return &kyc.SubmissionData{
		UserAddress: testAddress,
		Email:       "user@example.com",
		FirstName:   "Ada",
		LastName:    "Lovelace",
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	var created *kyc.Request
	store := &mockStore{
		createRequestFunc: func(ctx context.Context, req *kyc.Request) error {
			req.ID = "req-1"
			created = req
			return nil
		},
	}
	svc := NewService(store, nil, nil, zap.NewNop())

	req, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateRequest to be called")
	}
	if req.Status != kyc.StatusPending {
		t.Errorf("expected status %s, got %s", kyc.StatusPending, req.Status)
	}
	if req.Method != kyc.MethodManual {
		t.Errorf("expected method %s, got %s", kyc.MethodManual, req.Method)
	}
	if req.UserAddress != testAddress {
		t.Errorf("expected lowercased address %s, got %s", testAddress, req.UserAddress)
	}
}

func TestSubmitRejectsInvalidAddress(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil, zap.NewNop())

	data := validSubmission()
	data.UserAddress = "not-an-address"

	_, err := svc.Submit(context.Background(), data)
	if err == nil {
		t.Fatal("expected error for invalid address")
	}
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Errorf("expected bad request category, got %v", err)
	}
}

func TestSubmitRequiresNamesForManual(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil, zap.NewNop())

	data := validSubmission()
	data.FirstName = ""

	_, err := svc.Submit(context.Background(), data)
	if err == nil {
		t.Fatal("expected error for missing name")
	}
	if !errors.Is(err, ErrMissingName) {
		t.Errorf("expected ErrMissingName, got %v", err)
	}
}

func TestSubmitDuplicateUpdatesNewestRecord(t *testing.T) {
	existing := &kyc.Request{
		ID:          "req-1",
		UserAddress: testAddress,
		Status:      kyc.StatusPending,
		Method:      kyc.MethodManual,
	}

	var updatedStatus kyc.Status
	store := &mockStore{
		latestByAddressFunc: func(ctx context.Context, address string) (*kyc.Request, error) {
			return existing, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status kyc.Status, reason string, reviewedAt time.Time) error {
			if id != existing.ID {
				t.Errorf("expected update on %s, got %s", existing.ID, id)
			}
			updatedStatus = status
			return nil
		},
		getRequestFunc: func(ctx context.Context, id string) (*kyc.Request, error) {
			existing.Status = updatedStatus
			return existing, nil
		},
		createRequestFunc: func(ctx context.Context, req *kyc.Request) error {
			t.Fatal("duplicate submission must not create a new record")
			return nil
		},
	}
	svc := NewService(store, nil, nil, zap.NewNop())

	req, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Status != kyc.StatusApproved {
		t.Errorf("expected duplicate submission to approve existing record, got %s", req.Status)
	}
}

func TestSubmitCompletedApplicantIsApproved(t *testing.T) {
	store := &mockStore{
		createRequestFunc: func(ctx context.Context, req *kyc.Request) error {
			req.ID = "req-1"
			return nil
		},
	}
	applicants := &mockApplicantAPI{
		getApplicantStatusFunc: func(ctx context.Context, applicantID string) (*provider.ApplicantStatus, error) {
			return &provider.ApplicantStatus{ReviewStatus: "completed"}, nil
		},
	}
	svc := NewService(store, nil, applicants, zap.NewNop())

	data := validSubmission()
	data.ApplicantID = "app-123"

	req, err := svc.Submit(context.Background(), data)
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if req.Status != kyc.StatusApproved {
		t.Errorf("expected %s for completed applicant, got %s", kyc.StatusApproved, req.Status)
	}
}

func TestSubmitProviderCreatesPending(t *testing.T) {
	var created *kyc.Request
	store := &mockStore{
		createRequestFunc: func(ctx context.Context, req *kyc.Request) error {
			req.ID = "req-1"
			created = req
			return nil
		},
	}
	svc := NewService(store, nil, nil, zap.NewNop())

	data := &kyc.SubmissionData{
		UserAddress: testAddress,
		ApplicantID: "app-123",
	}
	req, err := svc.SubmitProvider(context.Background(), data)
	if err != nil {
		t.Fatalf("SubmitProvider failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateRequest to be called")
	}
	if req.Method != kyc.MethodProvider {
		t.Errorf("expected method %s, got %s", kyc.MethodProvider, req.Method)
	}
	if req.Status != kyc.StatusPending {
		t.Errorf("expected status %s, got %s", kyc.StatusPending, req.Status)
	}
}

func TestSubmitProviderResubmissionResetsToPending(t *testing.T) {
	existing := &kyc.Request{
		ID:          "req-1",
		UserAddress: testAddress,
		Method:      kyc.MethodProvider,
		Status:      kyc.StatusRejected,
	}

	var refreshed bool
	store := &mockStore{
		latestByAddressAndMethodFunc: func(ctx context.Context, address string, method kyc.Method) (*kyc.Request, error) {
			if method != kyc.MethodProvider {
				t.Errorf("expected provider method lookup, got %s", method)
			}
			return existing, nil
		},
		updateSubmissionFunc: func(ctx context.Context, id string, data *kyc.SubmissionData) error {
			refreshed = true
			existing.Status = kyc.StatusPending
			existing.RejectionReason = ""
			return nil
		},
		getRequestFunc: func(ctx context.Context, id string) (*kyc.Request, error) {
			return existing, nil
		},
		createRequestFunc: func(ctx context.Context, req *kyc.Request) error {
			t.Fatal("resubmission must not create a new record")
			return nil
		},
	}
	svc := NewService(store, nil, nil, zap.NewNop())

	data := &kyc.SubmissionData{
		UserAddress: testAddress,
		ApplicantID: "app-456",
	}
	req, err := svc.SubmitProvider(context.Background(), data)
	if err != nil {
		t.Fatalf("SubmitProvider failed: %v", err)
	}
	if !refreshed {
		t.Fatal("expected UpdateSubmission to be called")
	}
	if req.Status != kyc.StatusPending {
		t.Errorf("expected status reset to %s, got %s", kyc.StatusPending, req.Status)
	}
}

func TestListRequestsRejectsUnknownStatus(t *testing.T) {
	svc := NewService(&mockStore{}, nil, nil, zap.NewNop())

	bogus := kyc.Status("BOGUS")
	_, err := svc.ListRequests(context.Background(), &bogus)
	if err == nil {
		t.Fatal("expected error for unknown status filter")
	}
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Errorf("expected bad request category, got %v", err)
	}
}

func TestListRequestsPassesStatusFilter(t *testing.T) {
	var gotOpts int
	store := &mockStore{
		listRequestsFunc: func(ctx context.Context, opts ...kycstore.QueryOption) ([]*kyc.Request, error) {
			gotOpts = len(opts)
			return []*kyc.Request{}, nil
		},
	}
	svc := NewService(store, nil, nil, zap.NewNop())

	status := kyc.StatusPending
	if _, err := svc.ListRequests(context.Background(), &status); err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if gotOpts != 1 {
		t.Errorf("expected one query option, got %d", gotOpts)
	}
}

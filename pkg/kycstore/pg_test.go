package kycstore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
	"github.com/gsdclabs/gsdc-backend/pkg/pgutil"
	mghelper "github.com/gsdclabs/gsdc-backend/pkg/pgutil/migrations"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	if err := mghelper.CreateSchema(ctx, db, &RequestDao{}); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed kycstore tests")
}

func newTestRequest(address string, method kyc.Method) *kyc.Request {
	return &kyc.Request{
		UserAddress: address,
		Email:       "alice@example.com",
		FirstName:   "Alice",
		LastName:    "Smith",
		Method:      method,
		Status:      kyc.StatusPending,
	}
}

func TestKYCPGStore_CreateAndGet(t *testing.T) {
	ctx, s := setupStore(t)

	req := newTestRequest("0xABCDEF1234567890abcdef1234567890ABCDEF12", kyc.MethodManual)
	if err := s.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}
	if req.ID == "" {
		t.Fatal("expected generated request id")
	}
	if req.SubmittedAt.IsZero() {
		t.Fatal("expected submission timestamp to be set")
	}

	got, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest() failed: %v", err)
	}
	if got.UserAddress != "0xabcdef1234567890abcdef1234567890abcdef12" {
		t.Errorf("expected lower-cased address, got %s", got.UserAddress)
	}
	if got.Email != req.Email || got.FirstName != req.FirstName {
		t.Errorf("submission fields mismatch: got %+v", got)
	}
	if got.Status != kyc.StatusPending {
		t.Errorf("expected PENDING status, got %s", got.Status)
	}

	_, err = s.GetRequest(ctx, "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestKYCPGStore_LatestLookups(t *testing.T) {
	ctx, s := setupStore(t)

	addr := "0x1111111111111111111111111111111111111111"

	older := newTestRequest(addr, kyc.MethodManual)
	older.SubmittedAt = time.Now().UTC().Add(-time.Hour)
	if err := s.CreateRequest(ctx, older); err != nil {
		t.Fatalf("CreateRequest(older) failed: %v", err)
	}

	newer := newTestRequest(addr, kyc.MethodProvider)
	newer.ApplicantID = "applicant-1"
	if err := s.CreateRequest(ctx, newer); err != nil {
		t.Fatalf("CreateRequest(newer) failed: %v", err)
	}

	latest, err := s.LatestByAddress(ctx, addr)
	if err != nil {
		t.Fatalf("LatestByAddress() failed: %v", err)
	}
	if latest.ID != newer.ID {
		t.Errorf("expected newest request %s, got %s", newer.ID, latest.ID)
	}

	// Mixed-case input must match the lower-cased stored address.
	manual, err := s.LatestByAddressAndMethod(ctx, "0x1111111111111111111111111111111111111111", kyc.MethodManual)
	if err != nil {
		t.Fatalf("LatestByAddressAndMethod() failed: %v", err)
	}
	if manual.ID != older.ID {
		t.Errorf("expected manual request %s, got %s", older.ID, manual.ID)
	}

	byApplicant, err := s.FindByApplicantID(ctx, addr, "applicant-1")
	if err != nil {
		t.Fatalf("FindByApplicantID() failed: %v", err)
	}
	if byApplicant.ID != newer.ID {
		t.Errorf("expected provider request %s, got %s", newer.ID, byApplicant.ID)
	}

	_, err = s.LatestByAddress(ctx, "0x2222222222222222222222222222222222222222")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	_, err = s.FindByApplicantID(ctx, addr, "applicant-unknown")
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestKYCPGStore_ListRequests(t *testing.T) {
	ctx, s := setupStore(t)

	addrs := []string{
		"0x3333333333333333333333333333333333333333",
		"0x4444444444444444444444444444444444444444",
		"0x5555555555555555555555555555555555555555",
	}
	for i, addr := range addrs {
		req := newTestRequest(addr, kyc.MethodManual)
		req.SubmittedAt = time.Now().UTC().Add(-time.Duration(i) * time.Minute)
		if err := s.CreateRequest(ctx, req); err != nil {
			t.Fatalf("CreateRequest() failed: %v", err)
		}
	}

	approved := newTestRequest("0x6666666666666666666666666666666666666666", kyc.MethodManual)
	approved.Status = kyc.StatusApproved
	if err := s.CreateRequest(ctx, approved); err != nil {
		t.Fatalf("CreateRequest(approved) failed: %v", err)
	}

	all, err := s.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("unexpected request count: got %d want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].SubmittedAt.After(all[i-1].SubmittedAt) {
			t.Fatalf("expected requests ordered newest first")
		}
	}

	pending, err := s.ListRequests(ctx, WithStatus(kyc.StatusPending))
	if err != nil {
		t.Fatalf("ListRequests(pending) failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("unexpected pending count: got %d want 3", len(pending))
	}

	limited, err := s.ListRequests(ctx, WithStatus(kyc.StatusPending), WithLimit(2))
	if err != nil {
		t.Fatalf("ListRequests(limited) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("unexpected limited count: got %d want 2", len(limited))
	}
}

func TestKYCPGStore_UpdateStatus(t *testing.T) {
	ctx, s := setupStore(t)

	req := newTestRequest("0x7777777777777777777777777777777777777777", kyc.MethodManual)
	if err := s.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}

	reviewedAt := time.Now().UTC().Truncate(time.Millisecond)
	err := s.UpdateStatus(ctx, req.ID, kyc.StatusRejected, "document unreadable", reviewedAt)
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	got, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest() failed: %v", err)
	}
	if got.Status != kyc.StatusRejected {
		t.Errorf("expected REJECTED status, got %s", got.Status)
	}
	if got.RejectionReason != "document unreadable" {
		t.Errorf("unexpected rejection reason: %q", got.RejectionReason)
	}
	if got.ReviewedAt == nil || !got.ReviewedAt.Equal(reviewedAt) {
		t.Errorf("unexpected reviewed_at: %v", got.ReviewedAt)
	}

	// Re-approval clears the stale rejection reason.
	err = s.UpdateStatus(ctx, req.ID, kyc.StatusApproved, "", time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateStatus(approve) failed: %v", err)
	}
	got, err = s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest() failed: %v", err)
	}
	if got.Status != kyc.StatusApproved {
		t.Errorf("expected APPROVED status, got %s", got.Status)
	}
	if got.RejectionReason != "" {
		t.Errorf("expected rejection reason cleared on approval, got %q", got.RejectionReason)
	}

	err = s.UpdateStatus(ctx, "00000000-0000-0000-0000-000000000000", kyc.StatusApproved, "", time.Now().UTC())
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestKYCPGStore_UpdateSubmissionResetsReview(t *testing.T) {
	ctx, s := setupStore(t)

	req := newTestRequest("0x8888888888888888888888888888888888888888", kyc.MethodManual)
	if err := s.CreateRequest(ctx, req); err != nil {
		t.Fatalf("CreateRequest() failed: %v", err)
	}
	err := s.UpdateStatus(ctx, req.ID, kyc.StatusRejected, "blurry photo", time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}

	err = s.UpdateSubmission(ctx, req.ID, &kyc.SubmissionData{
		FirstName:    "Alicia",
		DocumentType: "passport",
		DocumentURL:  "https://docs.example.com/passport.pdf",
	})
	if err != nil {
		t.Fatalf("UpdateSubmission() failed: %v", err)
	}

	got, err := s.GetRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetRequest() failed: %v", err)
	}
	if got.Status != kyc.StatusPending {
		t.Errorf("expected status reset to PENDING, got %s", got.Status)
	}
	if got.RejectionReason != "" {
		t.Errorf("expected rejection reason cleared, got %q", got.RejectionReason)
	}
	if got.ReviewedAt != nil {
		t.Errorf("expected reviewed_at cleared, got %v", got.ReviewedAt)
	}
	if got.FirstName != "Alicia" {
		t.Errorf("expected resubmitted first name, got %q", got.FirstName)
	}
	if got.DocumentType != "passport" {
		t.Errorf("expected resubmitted document type, got %q", got.DocumentType)
	}
	// Untouched fields survive a partial resubmission.
	if got.LastName != "Smith" {
		t.Errorf("expected last name preserved, got %q", got.LastName)
	}

	err = s.UpdateSubmission(ctx, "00000000-0000-0000-0000-000000000000", &kyc.SubmissionData{})
	if !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestKYCPGStore_Stats(t *testing.T) {
	ctx, s := setupStore(t)

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}

	byStatus := map[kyc.Status]int{
		kyc.StatusPending:  3,
		kyc.StatusApproved: 2,
		kyc.StatusRejected: 1,
	}
	i := 0
	for status, count := range byStatus {
		for range count {
			req := newTestRequest(testAddressN(i), kyc.MethodManual)
			req.Status = status
			if err := s.CreateRequest(ctx, req); err != nil {
				t.Fatalf("CreateRequest() failed: %v", err)
			}
			i++
		}
	}

	stats, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	if stats.Total != 6 || stats.Pending != 3 || stats.Approved != 2 || stats.Rejected != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func testAddressN(n int) string {
	const hexdigits = "0123456789abcdef"
	b := make([]byte, 40)
	for i := range b {
		b[i] = hexdigits[n%16]
	}
	return "0x" + string(b)
}

package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
	"github.com/gsdclabs/gsdc-backend/pkg/kyc"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the public KYC endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/", apphttp.HandleError(h.submit))
	r.Post("/provider", apphttp.HandleError(h.submitProvider))
	r.Get("/stats", apphttp.HandleError(h.stats))
	r.Get("/{address}/status", apphttp.HandleError(h.status))
}

// RegisterAdminRoutes registers the admin listing endpoint
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/", apphttp.HandleError(h.list))
}

func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	var data kyc.SubmissionData
	if err := apphttp.DecodeJSON(r, &data); err != nil {
		return err
	}

	req, err := h.service.Submit(r.Context(), &data)
	if err != nil {
		return err
	}

	return apphttp.WriteJSON(w, http.StatusCreated, req)
}

func (h *HTTP) submitProvider(w http.ResponseWriter, r *http.Request) error {
	var data kyc.SubmissionData
	if err := apphttp.DecodeJSON(r, &data); err != nil {
		return err
	}

	req, err := h.service.SubmitProvider(r.Context(), &data)
	if err != nil {
		return err
	}

	return apphttp.WriteJSON(w, http.StatusCreated, req)
}

func (h *HTTP) status(w http.ResponseWriter, r *http.Request) error {
	address := chi.URLParam(r, "address")

	// Status never fails: invalid addresses resolve to NOT_SUBMITTED.
	result := h.service.Status(r.Context(), address)
	return apphttp.WriteJSON(w, http.StatusOK, result)
}

func (h *HTTP) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		return apperrors.GeneralError(err)
	}
	return apphttp.WriteJSON(w, http.StatusOK, stats)
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	var status *kyc.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		st := kyc.Status(raw)
		status = &st
	}

	requests, err := h.service.ListRequests(r.Context(), status)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, requests)
}

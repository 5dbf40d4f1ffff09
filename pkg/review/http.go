package review

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
	"github.com/gsdclabs/gsdc-backend/pkg/provider"
)

const maxWebhookBody = 1 << 20

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type rejectBody struct {
	Reason string `json:"reason"`
}

// RegisterAdminRoutes registers the admin decision endpoints on the given
// chi router. The router is expected to already carry admin auth.
func RegisterAdminRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/{id}/approve", apphttp.HandleError(h.approve))
	r.Post("/{id}/reject", apphttp.HandleError(h.reject))
}

// RegisterWebhookRoutes registers the inbound provider webhook receiver
func RegisterWebhookRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/provider", apphttp.HandleError(h.providerWebhook))
}

func (h *HTTP) approve(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	req, err := h.service.Approve(r.Context(), id)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, req)
}

func (h *HTTP) reject(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	var body rejectBody
	if err := apphttp.DecodeJSON(r, &body); err != nil {
		return err
	}

	req, err := h.service.Reject(r.Context(), id, body.Reason)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, req)
}

// providerWebhook receives applicant-reviewed events from the provider.
// Unknown event types are acknowledged so the provider stops retrying
// them.
func (h *HTTP) providerWebhook(w http.ResponseWriter, r *http.Request) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read webhook body")
	}

	var ev provider.WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return apperrors.BadRequestError(err, "malformed webhook payload")
	}
	ev.RawPayload = raw

	h.logger.Info("Provider webhook received",
		zap.String("type", ev.Type),
		zap.String("applicant_id", ev.ApplicantID),
		zap.String("external_user_id", ev.ExternalUserID))

	if err := h.service.ApplyProviderReview(r.Context(), &ev); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package contact

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service *Service
	logger  *zap.Logger
}

// RegisterRoutes registers the public contact-form endpoint
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/", apphttp.HandleError(h.create))
}

// RegisterAdminRoutes registers the admin inbox endpoints
func RegisterAdminRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/", apphttp.HandleError(h.list))
	r.Post("/{id}/read", apphttp.HandleError(h.markRead))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var msg Message
	if err := apphttp.DecodeJSON(r, &msg); err != nil {
		return err
	}

	if err := h.service.Create(r.Context(), &msg); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, &msg)
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	messages, err := h.service.List(r.Context())
	if err != nil {
		return apperrors.GeneralError(err)
	}
	return apphttp.WriteJSON(w, http.StatusOK, messages)
}

func (h *HTTP) markRead(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid message id")
	}

	if err := h.service.MarkRead(r.Context(), id); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

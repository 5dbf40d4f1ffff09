package reserves

import (
	"net/http"

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

// RegisterRoutes registers the public reserves endpoint
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/", apphttp.HandleError(h.summary))
}

// RegisterAdminRoutes registers the reserve management endpoint
func RegisterAdminRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/", apphttp.HandleError(h.create))
}

func (h *HTTP) summary(w http.ResponseWriter, r *http.Request) error {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		return apperrors.GeneralError(err)
	}
	return apphttp.WriteJSON(w, http.StatusOK, summary)
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var asset Asset
	if err := apphttp.DecodeJSON(r, &asset); err != nil {
		return err
	}

	if err := h.service.Create(r.Context(), &asset); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, &asset)
}

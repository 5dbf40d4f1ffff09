package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
	"github.com/gsdclabs/gsdc-backend/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service *Service
	logger  *zap.Logger
}

type rolesResponse struct {
	Address string `json:"address"`
	Roles   []Role `json:"roles"`
}

// RegisterAdminRoutes registers the role lookup endpoint
func RegisterAdminRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/{address}", apphttp.HandleError(h.rolesFor))
}

func (h *HTTP) rolesFor(w http.ResponseWriter, r *http.Request) error {
	address := chi.URLParam(r, "address")
	if !auth.ValidateEVMAddress(address) {
		return apperrors.BadRequestError(nil, "invalid wallet address")
	}

	expanded, err := h.service.RolesFor(r.Context(), address)
	if err != nil {
		return apperrors.GeneralError(err)
	}

	return apphttp.WriteJSON(w, http.StatusOK, &rolesResponse{
		Address: auth.LowerAddress(address),
		Roles:   expanded,
	})
}

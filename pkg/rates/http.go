package rates

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
	apphttp "github.com/gsdclabs/gsdc-backend/pkg/app/http"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service *Service
	logger  *zap.Logger
}

type setRateBody struct {
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"`
}

type updateRateBody struct {
	Rate decimal.Decimal `json:"rate"`
}

// RegisterRoutes registers the public rate endpoints
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/", apphttp.HandleError(h.list))
	r.Get("/convert", apphttp.HandleError(h.convert))
}

// RegisterAdminRoutes registers the rate management endpoints
func RegisterAdminRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/", apphttp.HandleError(h.set))
	r.Put("/{id}", apphttp.HandleError(h.update))
	r.Delete("/{id}", apphttp.HandleError(h.delete))
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	rates, err := h.service.List(r.Context())
	if err != nil {
		return apperrors.GeneralError(err)
	}
	return apphttp.WriteJSON(w, http.StatusOK, rates)
}

func (h *HTTP) convert(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		return apperrors.BadRequestError(err, "invalid amount")
	}

	conversion, err := h.service.Convert(r.Context(), q.Get("from"), q.Get("to"), amount)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, conversion)
}

func (h *HTTP) set(w http.ResponseWriter, r *http.Request) error {
	var body setRateBody
	if err := apphttp.DecodeJSON(r, &body); err != nil {
		return err
	}

	rate, err := h.service.Set(r.Context(), body.CurrencyFrom, body.CurrencyTo, body.Rate)
	if err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusCreated, rate)
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid rate id")
	}

	var body updateRateBody
	if err := apphttp.DecodeJSON(r, &body); err != nil {
		return err
	}

	if err := h.service.Update(r.Context(), id, body.Rate); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *HTTP) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperrors.BadRequestError(err, "invalid rate id")
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		return err
	}
	return apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

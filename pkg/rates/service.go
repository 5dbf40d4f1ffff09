package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
)

// conversionScale bounds the precision of derived inverse rates.
const conversionScale = 10

// Service implements exchange-rate management and conversion.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates an exchange-rate service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context) ([]*Rate, error) {
	return s.store.List(ctx)
}

// Convert converts an amount between two currencies. When no direct quote
// exists for the pair, the inverse pair's rate is used reciprocally.
func (s *Service) Convert(ctx context.Context, from, to string, amount decimal.Decimal) (*Conversion, error) {
	from = normalizeCurrency(from)
	to = normalizeCurrency(to)
	if from == "" || to == "" {
		return nil, apperrors.BadRequestError(nil, "from and to currencies are required")
	}
	if amount.IsNegative() {
		return nil, apperrors.BadRequestError(nil, "amount must not be negative")
	}

	if from == to {
		return &Conversion{
			From:      from,
			To:        to,
			Amount:    amount,
			Converted: amount,
			Rate:      decimal.NewFromInt(1),
		}, nil
	}

	rate, inverse, err := s.resolveRate(ctx, from, to)
	if err != nil {
		if errors.Is(err, ErrRateNotFound) {
			return nil, apperrors.ResourceNotFoundError(err,
				fmt.Sprintf("no exchange rate for %s/%s", from, to))
		}
		return nil, err
	}

	return &Conversion{
		From:      from,
		To:        to,
		Amount:    amount,
		Converted: amount.Mul(rate),
		Rate:      rate,
		Inverse:   inverse,
	}, nil
}

func (s *Service) resolveRate(ctx context.Context, from, to string) (decimal.Decimal, bool, error) {
	direct, err := s.store.Get(ctx, from, to)
	if err == nil {
		return direct.Rate, false, nil
	}
	if !errors.Is(err, ErrRateNotFound) {
		return decimal.Zero, false, err
	}

	reverse, err := s.store.Get(ctx, to, from)
	if err != nil {
		return decimal.Zero, false, err
	}
	if reverse.Rate.IsZero() {
		return decimal.Zero, false, ErrRateNotFound
	}
	return decimal.NewFromInt(1).DivRound(reverse.Rate, conversionScale), true, nil
}

// Set creates or refreshes the quote for a pair.
func (s *Service) Set(ctx context.Context, from, to string, value decimal.Decimal) (*Rate, error) {
	from = normalizeCurrency(from)
	to = normalizeCurrency(to)
	if from == "" || to == "" || from == to {
		return nil, apperrors.BadRequestError(nil, "a distinct currency pair is required")
	}
	if !value.IsPositive() {
		return nil, apperrors.BadRequestError(nil, "rate must be positive")
	}

	rate := &Rate{
		CurrencyFrom: from,
		CurrencyTo:   to,
		Rate:         value,
	}
	if err := s.store.Upsert(ctx, rate); err != nil {
		return nil, err
	}

	s.logger.Info("Exchange rate set",
		zap.String("pair", from+"/"+to),
		zap.String("rate", value.String()))
	return rate, nil
}

// Update changes an existing quote by id.
func (s *Service) Update(ctx context.Context, id int64, value decimal.Decimal) error {
	if !value.IsPositive() {
		return apperrors.BadRequestError(nil, "rate must be positive")
	}
	if err := s.store.Update(ctx, id, value); err != nil {
		if errors.Is(err, ErrRateNotFound) {
			return apperrors.ResourceNotFoundError(err, "exchange rate not found")
		}
		return err
	}
	return nil
}

// Delete removes a quote by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRateNotFound) {
			return apperrors.ResourceNotFoundError(err, "exchange rate not found")
		}
		return err
	}
	return nil
}

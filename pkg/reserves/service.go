package reserves

import (
	"context"
	"sort"

	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
)

// Service implements reserve-asset management and aggregation.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a reserve service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Summary lists every asset and aggregates the totals per currency.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	assets, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	byCurrency := map[string]*CurrencyTotal{}
	for _, asset := range assets {
		total, ok := byCurrency[asset.Currency]
		if !ok {
			total = &CurrencyTotal{Currency: asset.Currency}
			byCurrency[asset.Currency] = total
		}
		total.Total = total.Total.Add(asset.Amount)
		total.Assets++
	}

	totals := make([]*CurrencyTotal, 0, len(byCurrency))
	for _, total := range byCurrency {
		totals = append(totals, total)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Currency < totals[j].Currency })

	return &Summary{
		Assets: assets,
		Totals: totals,
	}, nil
}

// Create records a new custody holding.
func (s *Service) Create(ctx context.Context, asset *Asset) error {
	if asset.Name == "" || asset.Custodian == "" || asset.Currency == "" {
		return apperrors.BadRequestError(nil, "name, custodian, and currency are required")
	}
	if asset.Amount.IsNegative() {
		return apperrors.BadRequestError(nil, "amount must not be negative")
	}

	if err := s.store.Create(ctx, asset); err != nil {
		return err
	}

	s.logger.Info("Reserve asset recorded",
		zap.String("name", asset.Name),
		zap.String("currency", asset.Currency),
		zap.String("amount", asset.Amount.String()))
	return nil
}

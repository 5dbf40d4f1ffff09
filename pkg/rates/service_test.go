package rates

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/gsdclabs/gsdc-backend/pkg/app/errors"
)

type mockStore struct {
	listFunc   func(ctx context.Context) ([]*Rate, error)
	getFunc    func(ctx context.Context, from, to string) (*Rate, error)
	upsertFunc func(ctx context.Context, rate *Rate) error
	updateFunc func(ctx context.Context, id int64, value decimal.Decimal) error
	deleteFunc func(ctx context.Context, id int64) error
}

func (m *mockStore) List(ctx context.Context) ([]*Rate, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) Get(ctx context.Context, from, to string) (*Rate, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, from, to)
	}
	return nil, ErrRateNotFound
}

func (m *mockStore) Upsert(ctx context.Context, rate *Rate) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, rate)
	}
	return nil
}

func (m *mockStore) Update(ctx context.Context, id int64, value decimal.Decimal) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, value)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConvertUsesDirectRate(t *testing.T) {
	store := &mockStore{
		getFunc: func(ctx context.Context, from, to string) (*Rate, error) {
			if from == "USD" && to == "THB" {
				return &Rate{CurrencyFrom: from, CurrencyTo: to, Rate: dec("36.5")}, nil
			}
			return nil, ErrRateNotFound
		},
	}
	svc := NewService(store, zap.NewNop())

	conv, err := svc.Convert(context.Background(), "usd", "thb", dec("100"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !conv.Converted.Equal(dec("3650")) {
		t.Errorf("expected 3650, got %s", conv.Converted)
	}
	if conv.Inverse {
		t.Error("direct quote must not be marked inverse")
	}
}

func TestConvertFallsBackToInverseRate(t *testing.T) {
	store := &mockStore{
		getFunc: func(ctx context.Context, from, to string) (*Rate, error) {
			if from == "THB" && to == "USD" {
				return &Rate{CurrencyFrom: from, CurrencyTo: to, Rate: dec("0.025")}, nil
			}
			return nil, ErrRateNotFound
		},
	}
	svc := NewService(store, zap.NewNop())

	conv, err := svc.Convert(context.Background(), "USD", "THB", dec("10"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !conv.Rate.Equal(dec("40")) {
		t.Errorf("expected inverse rate 40, got %s", conv.Rate)
	}
	if !conv.Converted.Equal(dec("400")) {
		t.Errorf("expected 400, got %s", conv.Converted)
	}
	if !conv.Inverse {
		t.Error("derived quote must be marked inverse")
	}
}

func TestConvertSameCurrencyIsIdentity(t *testing.T) {
	store := &mockStore{
		getFunc: func(ctx context.Context, from, to string) (*Rate, error) {
			t.Fatal("identity conversion must not hit the store")
			return nil, nil
		},
	}
	svc := NewService(store, zap.NewNop())

	conv, err := svc.Convert(context.Background(), "USD", "usd", dec("55"))
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !conv.Converted.Equal(dec("55")) {
		t.Errorf("expected 55, got %s", conv.Converted)
	}
}

func TestConvertUnknownPair(t *testing.T) {
	svc := NewService(&mockStore{}, zap.NewNop())

	_, err := svc.Convert(context.Background(), "USD", "XXX", dec("1"))
	if err == nil {
		t.Fatal("expected error for unknown pair")
	}
	if !apperrors.Is(err, apperrors.CategoryResourceNotFound) {
		t.Errorf("expected not found category, got %v", err)
	}
}

func TestConvertNegativeAmount(t *testing.T) {
	svc := NewService(&mockStore{}, zap.NewNop())

	_, err := svc.Convert(context.Background(), "USD", "THB", dec("-1"))
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Errorf("expected bad request category, got %v", err)
	}
}

func TestSetValidatesPair(t *testing.T) {
	svc := NewService(&mockStore{}, zap.NewNop())

	if _, err := svc.Set(context.Background(), "USD", "USD", dec("1")); err == nil {
		t.Error("expected error for identical pair")
	}
	if _, err := svc.Set(context.Background(), "USD", "THB", dec("0")); err == nil {
		t.Error("expected error for non-positive rate")
	}
}

func TestSetNormalizesCurrencies(t *testing.T) {
	var upserted *Rate
	store := &mockStore{
		upsertFunc: func(ctx context.Context, rate *Rate) error {
			upserted = rate
			return nil
		},
	}
	svc := NewService(store, zap.NewNop())

	if _, err := svc.Set(context.Background(), " usd ", "thb", dec("36.5")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if upserted.CurrencyFrom != "USD" || upserted.CurrencyTo != "THB" {
		t.Errorf("expected normalized pair USD/THB, got %s/%s", upserted.CurrencyFrom, upserted.CurrencyTo)
	}
}

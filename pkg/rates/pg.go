package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// RateDao is a data access object that maps directly to the 'exchange_rates' table in PostgreSQL.
type RateDao struct {
	bun.BaseModel `bun:"table:exchange_rates,alias:er"`
	ID            int64     `bun:"id,pk,autoincrement"`
	CurrencyFrom  string    `bun:"currency_from,notnull,type:varchar(10)"`
	CurrencyTo    string    `bun:"currency_to,notnull,type:varchar(10)"`
	Rate          string    `bun:"rate,notnull,type:numeric(30,10)"`
	LastUpdated   time.Time `bun:"last_updated,nullzero,default:current_timestamp"`
}

// Store provides access to exchange rates.
type Store interface {
	List(ctx context.Context) ([]*Rate, error)
	Get(ctx context.Context, from, to string) (*Rate, error)
	Upsert(ctx context.Context, rate *Rate) error
	Update(ctx context.Context, id int64, value decimal.Decimal) error
	Delete(ctx context.Context, id int64) error
}

type pgStore struct {
	db *bun.DB
}

// NewStore creates an exchange-rate store on the given database.
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

func (s *pgStore) List(ctx context.Context) ([]*Rate, error) {
	var daos []RateDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("currency_from ASC", "currency_to ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}

	rates := make([]*Rate, 0, len(daos))
	for i := range daos {
		rate, err := toRate(&daos[i])
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, nil
}

func (s *pgStore) Get(ctx context.Context, from, to string) (*Rate, error) {
	dao := new(RateDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("currency_from = ?", normalizeCurrency(from)).
		Where("currency_to = ?", normalizeCurrency(to)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRateNotFound
		}
		return nil, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return toRate(dao)
}

// Upsert inserts the pair or refreshes its rate, keyed on the unique
// (currency_from, currency_to) constraint.
func (s *pgStore) Upsert(ctx context.Context, rate *Rate) error {
	dao := &RateDao{
		CurrencyFrom: normalizeCurrency(rate.CurrencyFrom),
		CurrencyTo:   normalizeCurrency(rate.CurrencyTo),
		Rate:         rate.Rate.String(),
		LastUpdated:  time.Now().UTC(),
	}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (currency_from, currency_to) DO UPDATE").
		Set("rate = EXCLUDED.rate").
		Set("last_updated = EXCLUDED.last_updated").
		Returning("id, last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}

	rate.ID = dao.ID
	rate.CurrencyFrom = dao.CurrencyFrom
	rate.CurrencyTo = dao.CurrencyTo
	rate.LastUpdated = dao.LastUpdated
	return nil
}

func (s *pgStore) Update(ctx context.Context, id int64, value decimal.Decimal) error {
	res, err := s.db.NewUpdate().
		Model((*RateDao)(nil)).
		Set("rate = ?", value.String()).
		Set("last_updated = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update exchange rate: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrRateNotFound
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*RateDao)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete exchange rate: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrRateNotFound
	}
	return nil
}

func toRate(dao *RateDao) (*Rate, error) {
	value, err := decimal.NewFromString(dao.Rate)
	if err != nil {
		return nil, fmt.Errorf("invalid stored rate %q: %w", dao.Rate, err)
	}
	return &Rate{
		ID:           dao.ID,
		CurrencyFrom: dao.CurrencyFrom,
		CurrencyTo:   dao.CurrencyTo,
		Rate:         value,
		LastUpdated:  dao.LastUpdated,
	}, nil
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

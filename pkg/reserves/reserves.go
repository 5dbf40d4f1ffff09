// Package reserves tracks the custody assets backing the stablecoin and
// produces the per-currency totals for the transparency page.
package reserves

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAssetNotFound = errors.New("reserve asset not found")

// Asset is one custody holding backing the issued supply.
type Asset struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Custodian string          `json:"custodian"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	AuditedAt *time.Time      `json:"auditedAt,omitempty"`
	ReportURL string          `json:"reportUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// CurrencyTotal is the aggregated holding for one currency.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Total    decimal.Decimal `json:"total"`
	Assets   int             `json:"assets"`
}

// Summary is the transparency page payload: every asset plus the
// per-currency totals.
type Summary struct {
	Assets []*Asset         `json:"assets"`
	Totals []*CurrencyTotal `json:"totals"`
}

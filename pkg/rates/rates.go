// Package rates manages the exchange-rate table backing the issuance
// basket and currency conversion.
package rates

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrRateNotFound = errors.New("exchange rate not found")

// Basket currencies plus the majors quoted against them.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyCNH = "CNH"
	CurrencyBRL = "BRL"
	CurrencyINR = "INR"
	CurrencyZAR = "ZAR"
	CurrencyIDR = "IDR"
	CurrencyTHB = "THB"
)

// BasketCurrencies are the currencies composing the stablecoin basket.
var BasketCurrencies = []string{
	CurrencyCNH,
	CurrencyBRL,
	CurrencyINR,
	CurrencyZAR,
	CurrencyIDR,
	CurrencyTHB,
}

// Rate is one directed currency pair quote.
type Rate struct {
	ID           int64           `json:"id"`
	CurrencyFrom string          `json:"currencyFrom"`
	CurrencyTo   string          `json:"currencyTo"`
	Rate         decimal.Decimal `json:"rate"`
	LastUpdated  time.Time       `json:"lastUpdated"`
}

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
	// Inverse is true when the quote was derived from the reverse pair.
	Inverse bool `json:"inverse"`
}

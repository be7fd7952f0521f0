package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSample is the single current-price record. There is exactly one
// logical row; it is overwritten in place by the feed service.
type PriceSample struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NormalizePrice rounds p to the configured number of decimal places.
// Applied at every write boundary so that repeated reads of the same price
// compare equal and sub-tick jitter never counts as "price changed".
func NormalizePrice(p decimal.Decimal, places int32) decimal.Decimal {
	return p.Round(places)
}

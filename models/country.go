package models

import (
	"encoding/json"
	"time"
)

// Country is a persisted country row. Name is the natural key and is
// matched case-insensitively; pointer fields are NULL in the database
// when nil.
type Country struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Capital         *string   `json:"capital"`
	Region          *string   `json:"region"`
	Population      int64     `json:"population"`
	CurrencyCode    *string   `json:"currency_code"`
	ExchangeRate    *float64  `json:"exchange_rate"`
	EstimatedGDP    *float64  `json:"estimated_gdp"`
	FlagURL         *string   `json:"flag_url"`
	LastRefreshedAt time.Time `json:"-"`
}

// TimestampLayout is the wire format for last_refreshed_at, e.g.
// "2025-10-28T03:30:00Z".
const TimestampLayout = "2006-01-02T15:04:05Z"

// MarshalJSON serializes the country with last_refreshed_at rendered as
// a whole-second UTC timestamp.
func (c Country) MarshalJSON() ([]byte, error) {
	type alias Country
	var refreshedAt *string
	if !c.LastRefreshedAt.IsZero() {
		formatted := c.LastRefreshedAt.UTC().Format(TimestampLayout)
		refreshedAt = &formatted
	}
	return json.Marshal(struct {
		alias
		LastRefreshedAt *string `json:"last_refreshed_at"`
	}{
		alias:           alias(c),
		LastRefreshedAt: refreshedAt,
	})
}

// RefreshSummary reports the outcome of one refresh pass.
type RefreshSummary struct {
	Message string `json:"message"`
	Total   int    `json:"total"`
}

// StatusReport is the aggregate returned by GET /status.
type StatusReport struct {
	TotalCountries  int     `json:"total_countries"`
	LastRefreshedAt *string `json:"last_refreshed_at"`
}

package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryMarshalJSONTimestampFormat(t *testing.T) {
	code := "EUR"
	rate := 0.92
	country := Country{
		ID:              1,
		Name:            "France",
		Population:      67000000,
		CurrencyCode:    &code,
		ExchangeRate:    &rate,
		LastRefreshedAt: time.Date(2025, 10, 28, 3, 30, 0, 123456789, time.UTC),
	}

	raw, err := json.Marshal(country)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "2025-10-28T03:30:00Z", decoded["last_refreshed_at"], "sub-second precision must not leak into the wire format")
	assert.Equal(t, "France", decoded["name"])
	assert.Equal(t, 0.92, decoded["exchange_rate"])

	// Unknown optionals serialize as explicit nulls.
	assert.Contains(t, decoded, "estimated_gdp")
	assert.Nil(t, decoded["estimated_gdp"])
	assert.Nil(t, decoded["capital"])
}

func TestCountryMarshalJSONZeroTimestamp(t *testing.T) {
	raw, err := json.Marshal(Country{Name: "Fresh", Population: 1})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["last_refreshed_at"])
}

func TestCountryMarshalJSONNonUTCInput(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	country := Country{
		Name:            "Offsetia",
		Population:      5,
		LastRefreshedAt: time.Date(2025, 10, 28, 5, 30, 0, 0, zone),
	}

	raw, err := json.Marshal(country)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"last_refreshed_at":"2025-10-28T03:30:00Z"`)
}

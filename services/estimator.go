package services

import "math/rand/v2"

// Multiplier bounds for the GDP estimate, inclusive on both ends.
const (
	GDPMultiplierMin = 1000
	GDPMultiplierMax = 2000
)

// ComputeEstimatedGDP derives the estimated GDP from population and
// exchange rate. A nil rate yields nil (unknown), never zero. The
// multiplier is drawn uniformly at random per call, so repeated
// refreshes produce different estimates for identical inputs.
func ComputeEstimatedGDP(population int64, exchangeRate *float64) *float64 {
	if exchangeRate == nil {
		return nil
	}
	multiplier := rand.IntN(GDPMultiplierMax-GDPMultiplierMin+1) + GDPMultiplierMin
	gdp := float64(population) * float64(multiplier) / *exchangeRate
	return &gdp
}

// ExtractCurrencyCode picks the currency code from a raw country record:
// the code of the first currency in the list, or nil when the record has
// no currencies or the first entry carries no code.
func ExtractCurrencyCode(item RawCountry) *string {
	if len(item.Currencies) == 0 {
		return nil
	}
	code := item.Currencies[0].Code
	if code == "" {
		return nil
	}
	return &code
}

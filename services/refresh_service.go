package services

import (
	"context"
	"time"

	"country-api/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CountryStore is the persistence surface the refresh pipeline needs.
// *CountryService satisfies it.
type CountryStore interface {
	UpsertCountry(ctx context.Context, country *models.Country) (*models.Country, error)
}

// SummaryRenderer produces the summary image for a set of countries and
// returns the written path, or "" when rendering failed. Implementations
// must never propagate render failures.
type SummaryRenderer interface {
	Generate(countries []models.Country) string
}

// RawDataFetcher is the upstream surface the refresh pipeline needs.
// *ExternalDataService satisfies it.
type RawDataFetcher interface {
	FetchCountries(ctx context.Context) ([]RawCountry, error)
	FetchExchangeRates(ctx context.Context) (map[string]float64, error)
}

// RefreshService orchestrates one refresh pass: fetch both upstream
// datasets, transform and upsert each record, then re-render the summary
// image from the rows touched this pass.
type RefreshService struct {
	External RawDataFetcher
	Store    CountryStore
	Renderer SummaryRenderer
}

func NewRefreshService(external RawDataFetcher, store CountryStore, renderer SummaryRenderer) *RefreshService {
	return &RefreshService{
		External: external,
		Store:    store,
		Renderer: renderer,
	}
}

// Refresh runs a single refresh pass. Either upstream fetch failing
// aborts the pass before any row is written. Per-record failures are
// logged and skipped; the pass continues.
func (s *RefreshService) Refresh(ctx context.Context) (*models.RefreshSummary, error) {
	runID := uuid.New().String()
	startTime := time.Now()
	logger := logrus.WithField("refresh_run_id", runID)

	logger.Info("Starting refresh pass")

	rawCountries, err := s.External.FetchCountries(ctx)
	if err != nil {
		logger.WithError(err).Error("Refresh aborted: countries fetch failed")
		return nil, err
	}

	rates, err := s.External.FetchExchangeRates(ctx)
	if err != nil {
		logger.WithError(err).Error("Refresh aborted: exchange-rate fetch failed")
		return nil, err
	}

	saved := make([]models.Country, 0, len(rawCountries))
	skipped := 0
	failed := 0

	for _, raw := range rawCountries {
		record, ok := buildCountryRecord(raw, rates)
		if !ok {
			skipped++
			continue
		}

		persisted, err := s.Store.UpsertCountry(ctx, record)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"country_name": record.Name,
				"error":        err,
			}).Warn("Skipping country record: upsert failed")
			failed++
			continue
		}
		saved = append(saved, *persisted)
	}

	// Render from the rows touched this pass, not the whole table.
	if path := s.Renderer.Generate(saved); path != "" {
		logger.WithField("image_path", path).Info("Summary image regenerated")
	}

	logger.WithFields(logrus.Fields{
		"total_upserted": len(saved),
		"skipped":        skipped,
		"failed":         failed,
		"duration":       time.Since(startTime),
	}).Info("Refresh pass completed")

	return &models.RefreshSummary{
		Message: "Countries refreshed successfully",
		Total:   len(saved),
	}, nil
}

// buildCountryRecord maps one raw record to a persistable country. It
// returns ok=false when the record lacks a name or a population and must
// not produce a row. The GDP estimate follows the currency rules: no
// currency code at all means a zero estimate, a code missing from the
// rate table means an unknown (nil) estimate.
func buildCountryRecord(raw RawCountry, rates map[string]float64) (*models.Country, bool) {
	if raw.Name == "" || raw.Population == nil {
		return nil, false
	}

	country := &models.Country{
		Name:         raw.Name,
		Capital:      optionalString(raw.Capital),
		Region:       optionalString(raw.Region),
		Population:   *raw.Population,
		FlagURL:      optionalString(raw.Flag),
		CurrencyCode: ExtractCurrencyCode(raw),
	}

	if country.CurrencyCode == nil {
		zero := float64(0)
		country.EstimatedGDP = &zero
		return country, true
	}

	if rate, known := rates[*country.CurrencyCode]; known {
		country.ExchangeRate = &rate
		country.EstimatedGDP = ComputeEstimatedGDP(country.Population, &rate)
	}

	return country, true
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"country-api/shared"

	"github.com/sirupsen/logrus"
)

// RawCurrency is one entry of a raw country's currencies list.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is one record as returned by the countries endpoint.
// Population is a pointer so that an absent field can be told apart
// from a real zero.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    string        `json:"capital"`
	Region     string        `json:"region"`
	Population *int64        `json:"population"`
	Flag       string        `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// exchangeRateEnvelope is the response shape of the exchange-rate endpoint.
type exchangeRateEnvelope struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// ExternalDataService fetches the raw country list and the exchange-rate
// table from the two upstream APIs. No retries; a bounded timeout and a
// single GET per call.
type ExternalDataService struct {
	countriesURL string
	exchangeURL  string
	client       *http.Client
}

// NewExternalDataService creates a configured external data service
func NewExternalDataService(countriesURL, exchangeURL string, timeout time.Duration) *ExternalDataService {
	factory := shared.NewHTTPClientFactory(timeout)
	return &ExternalDataService{
		countriesURL: countriesURL,
		exchangeURL:  exchangeURL,
		client:       factory.CreateOptimizedHTTPClient(timeout),
	}
}

// FetchCountries retrieves the raw country records from the countries API.
func (s *ExternalDataService) FetchCountries(ctx context.Context) ([]RawCountry, error) {
	var countries []RawCountry
	if err := s.getJSON(ctx, "FetchCountries", s.countriesURL, &countries); err != nil {
		return nil, err
	}

	logrus.WithField("record_count", len(countries)).Info("Fetched country records from upstream")
	return countries, nil
}

// FetchExchangeRates retrieves the currency-code to rate mapping, relative
// to the upstream's fixed base currency.
func (s *ExternalDataService) FetchExchangeRates(ctx context.Context) (map[string]float64, error) {
	var envelope exchangeRateEnvelope
	if err := s.getJSON(ctx, "FetchExchangeRates", s.exchangeURL, &envelope); err != nil {
		return nil, err
	}

	rates := envelope.Rates
	if rates == nil {
		rates = map[string]float64{}
	}

	logrus.WithField("rate_count", len(rates)).Info("Fetched exchange rates from upstream")
	return rates, nil
}

// getJSON performs one GET and decodes the body, mapping every failure
// mode to the upstream-unavailable error.
func (s *ExternalDataService) getJSON(ctx context.Context, operation, url string, target interface{}) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return shared.NewUpstreamError("external-data-service", operation, url, err)
	}
	shared.SetJSONRequestHeaders(request)

	response, err := s.client.Do(request)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"operation": operation,
			"url":       url,
			"error":     err,
		}).Error("External data request failed")
		return shared.NewUpstreamError("external-data-service", operation, url, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"operation":   operation,
			"url":         url,
			"status_code": response.StatusCode,
		}).Error("External data request returned non-2xx status")
		return shared.NewUpstreamError("external-data-service", operation, url,
			fmt.Errorf("unexpected status %d: %s", response.StatusCode, http.StatusText(response.StatusCode)))
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return shared.NewUpstreamError("external-data-service", operation, url,
			fmt.Errorf("failed to decode response body: %w", err))
	}

	return nil
}

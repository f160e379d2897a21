package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"country-api/models"
	"country-api/shared"

	"github.com/sirupsen/logrus"
)

const countryColumns = `id, name, capital, region, population, currency_code, exchange_rate, estimated_gdp, flag_url, last_refreshed_at`

// CountryService persists countries in Postgres. Name is the natural key
// and every lookup on it is case-insensitive.
type CountryService struct {
	DB *sql.DB
}

func NewCountryService(db *sql.DB) *CountryService {
	return &CountryService{DB: db}
}

// GetCountryByName returns the country matching name case-insensitively,
// or (nil, nil) when no row matches.
func (s *CountryService) GetCountryByName(ctx context.Context, name string) (*models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries WHERE LOWER(name) = LOWER($1)`

	country, err := scanCountry(s.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, shared.NewDatabaseError("country-service", "GetCountryByName", err)
	}
	return country, nil
}

// GetCountries lists countries with optional case-insensitive region and
// currency filters. sort "gdp_desc" orders by estimated GDP descending
// with NULL estimates last; any other sort value keeps insertion order.
func (s *CountryService) GetCountries(ctx context.Context, region, currency, sort string) ([]models.Country, error) {
	var conditions []string
	var args []interface{}

	if region != "" {
		args = append(args, region)
		conditions = append(conditions, "LOWER(region) = LOWER($1)")
	}
	if currency != "" {
		args = append(args, currency)
		if len(args) == 1 {
			conditions = append(conditions, "LOWER(currency_code) = LOWER($1)")
		} else {
			conditions = append(conditions, "LOWER(currency_code) = LOWER($2)")
		}
	}

	query := `SELECT ` + countryColumns + ` FROM countries`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if sort == "gdp_desc" {
		query += " ORDER BY estimated_gdp DESC NULLS LAST"
	} else {
		query += " ORDER BY id"
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.NewDatabaseError("country-service", "GetCountries", err)
	}
	defer rows.Close()

	countries := []models.Country{}
	for rows.Next() {
		country, err := scanCountry(rows)
		if err != nil {
			return nil, shared.NewDatabaseError("country-service", "GetCountries", err)
		}
		countries = append(countries, *country)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewDatabaseError("country-service", "GetCountries", err)
	}

	return countries, nil
}

// UpsertCountry inserts the country or overwrites every field of the
// existing row with the same name, bumping last_refreshed_at. The
// statement is a single INSERT ... ON CONFLICT so concurrent upserts of
// one name cannot produce two rows.
func (s *CountryService) UpsertCountry(ctx context.Context, country *models.Country) (*models.Country, error) {
	if err := validateCountry(country); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)

	query := `
		INSERT INTO countries (
			name, capital, region, population,
			currency_code, exchange_rate, estimated_gdp, flag_url,
			last_refreshed_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9
		)
		ON CONFLICT (LOWER(name)) DO UPDATE SET
			name = EXCLUDED.name,
			capital = EXCLUDED.capital,
			region = EXCLUDED.region,
			population = EXCLUDED.population,
			currency_code = EXCLUDED.currency_code,
			exchange_rate = EXCLUDED.exchange_rate,
			estimated_gdp = EXCLUDED.estimated_gdp,
			flag_url = EXCLUDED.flag_url,
			last_refreshed_at = EXCLUDED.last_refreshed_at
		RETURNING ` + countryColumns

	saved, err := scanCountry(s.DB.QueryRowContext(ctx, query,
		country.Name, country.Capital, country.Region, country.Population,
		country.CurrencyCode, country.ExchangeRate, country.EstimatedGDP, country.FlagURL,
		now,
	))
	if err != nil {
		return nil, shared.NewDatabaseError("country-service", "UpsertCountry", err)
	}

	logrus.WithFields(logrus.Fields{
		"country_name": saved.Name,
		"country_id":   saved.ID,
	}).Debug("Country upserted successfully")

	return saved, nil
}

// DeleteCountry removes the row matching name case-insensitively and
// returns the removed entity, or a not-found error when nothing matched.
func (s *CountryService) DeleteCountry(ctx context.Context, name string) (*models.Country, error) {
	query := `DELETE FROM countries WHERE LOWER(name) = LOWER($1) RETURNING ` + countryColumns

	country, err := scanCountry(s.DB.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, shared.NewNotFoundError("country-service", "DeleteCountry")
		}
		return nil, shared.NewDatabaseError("country-service", "DeleteCountry", err)
	}

	logrus.WithField("country_name", country.Name).Info("Country deleted")
	return country, nil
}

// GetStatus returns the total row count and the latest refresh timestamp
// across all rows, absent when the table is empty.
func (s *CountryService) GetStatus(ctx context.Context) (*models.StatusReport, error) {
	var total int
	var lastRefreshed sql.NullTime

	query := `SELECT COUNT(*), MAX(last_refreshed_at) FROM countries`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&total, &lastRefreshed); err != nil {
		return nil, shared.NewDatabaseError("country-service", "GetStatus", err)
	}

	status := &models.StatusReport{TotalCountries: total}
	if lastRefreshed.Valid {
		formatted := lastRefreshed.Time.UTC().Format(models.TimestampLayout)
		status.LastRefreshedAt = &formatted
	}
	return status, nil
}

func validateCountry(country *models.Country) error {
	if strings.TrimSpace(country.Name) == "" {
		return shared.NewValidationError("country-service", "UpsertCountry", "country name must not be empty")
	}
	if country.Population < 0 {
		return shared.NewValidationError("country-service", "UpsertCountry", "population must not be negative")
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCountry(row rowScanner) (*models.Country, error) {
	var country models.Country
	err := row.Scan(
		&country.ID,
		&country.Name,
		&country.Capital,
		&country.Region,
		&country.Population,
		&country.CurrencyCode,
		&country.ExchangeRate,
		&country.EstimatedGDP,
		&country.FlagURL,
		&country.LastRefreshedAt,
	)
	if err != nil {
		return nil, err
	}
	country.LastRefreshedAt = country.LastRefreshedAt.UTC()
	return &country, nil
}

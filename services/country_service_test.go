package services

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	"country-api/models"
	"country-api/shared"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupCountryServiceTest connects to the test database and resets the
// countries table. Tests are skipped when no database is reachable.
func setupCountryServiceTest(t *testing.T) *CountryService {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = "postgres://localhost/country_api_test?sslmode=disable"
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Skipf("Skipping country service integration tests - database not available: %v", err)
		return nil
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Skipf("Skipping country service integration tests - database ping failed: %v", err)
		return nil
	}

	applySchema(t, db)

	if _, err := db.Exec("TRUNCATE countries RESTART IDENTITY"); err != nil {
		t.Fatalf("failed to reset countries table: %v", err)
	}

	return NewCountryService(db)
}

func applySchema(t *testing.T, db *sql.DB) {
	t.Helper()

	content, err := os.ReadFile("../database/schema.sql")
	require.NoError(t, err)

	for _, stmt := range strings.Split(string(content), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to apply schema statement: %v", err)
		}
	}
}

func testCountry(name string) *models.Country {
	capital := "Capital City"
	region := "Testontinent"
	code := "TST"
	rate := 2.0
	gdp := 1500000.0
	flag := "https://flagcdn.com/tst.svg"
	return &models.Country{
		Name:         name,
		Capital:      &capital,
		Region:       &region,
		Population:   1000,
		CurrencyCode: &code,
		ExchangeRate: &rate,
		EstimatedGDP: &gdp,
		FlagURL:      &flag,
	}
}

func TestUpsertCountryCaseInsensitiveIdentity(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	first, err := service.UpsertCountry(ctx, testCountry("France"))
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	updated := testCountry("france")
	updated.Population = 2000
	second, err := service.UpsertCountry(ctx, updated)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "case variants of one name must update the same row")
	assert.Equal(t, "france", second.Name, "the latest name casing wins")
	assert.Equal(t, int64(2000), second.Population)

	countries, err := service.GetCountries(ctx, "", "", "")
	require.NoError(t, err)
	assert.Len(t, countries, 1)
}

func TestUpsertCountryBumpsRefreshTimestamp(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	first, err := service.UpsertCountry(ctx, testCountry("Chronia"))
	require.NoError(t, err)
	assert.False(t, first.LastRefreshedAt.IsZero())

	time.Sleep(1100 * time.Millisecond)

	second, err := service.UpsertCountry(ctx, testCountry("Chronia"))
	require.NoError(t, err)
	assert.True(t, second.LastRefreshedAt.After(first.LastRefreshedAt))
}

func TestUpsertCountryValidation(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	_, err := service.UpsertCountry(ctx, &models.Country{Name: "  ", Population: 1})
	require.Error(t, err)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryValidation))

	_, err = service.UpsertCountry(ctx, &models.Country{Name: "Negativia", Population: -1})
	require.Error(t, err)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryValidation))
}

func TestGetCountryByNameCaseInsensitive(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	_, err := service.UpsertCountry(ctx, testCountry("Japan"))
	require.NoError(t, err)

	found, err := service.GetCountryByName(ctx, "jApAn")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Japan", found.Name)

	missing, err := service.GetCountryByName(ctx, "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGetCountriesFiltersAndSort(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	europeHigh := testCountry("Alpha")
	europeHigh.Region = strPtr("Europe")
	europeHigh.EstimatedGDP = float64Ptr(900)

	europeLow := testCountry("Beta")
	europeLow.Region = strPtr("Europe")
	europeLow.CurrencyCode = strPtr("EUR")
	europeLow.EstimatedGDP = float64Ptr(100)

	unknownGDP := testCountry("Gamma")
	unknownGDP.Region = strPtr("Europe")
	unknownGDP.ExchangeRate = nil
	unknownGDP.EstimatedGDP = nil

	asia := testCountry("Delta")
	asia.Region = strPtr("Asia")

	for _, c := range []*models.Country{europeHigh, europeLow, unknownGDP, asia} {
		_, err := service.UpsertCountry(ctx, c)
		require.NoError(t, err)
	}

	// Case-insensitive region filter.
	europe, err := service.GetCountries(ctx, "EUROPE", "", "")
	require.NoError(t, err)
	assert.Len(t, europe, 3)

	// Case-insensitive currency filter.
	eur, err := service.GetCountries(ctx, "", "eur", "")
	require.NoError(t, err)
	require.Len(t, eur, 1)
	assert.Equal(t, "Beta", eur[0].Name)

	// Combined filters.
	both, err := service.GetCountries(ctx, "europe", "EUR", "")
	require.NoError(t, err)
	assert.Len(t, both, 1)

	// gdp_desc sorts non-increasing with NULL estimates last.
	sorted, err := service.GetCountries(ctx, "Europe", "", "gdp_desc")
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, "Alpha", sorted[0].Name)
	assert.Equal(t, "Beta", sorted[1].Name)
	assert.Equal(t, "Gamma", sorted[2].Name)

	// No sort parameter keeps insertion order.
	natural, err := service.GetCountries(ctx, "", "", "")
	require.NoError(t, err)
	require.Len(t, natural, 4)
	assert.Equal(t, "Alpha", natural[0].Name)
	assert.Equal(t, "Delta", natural[3].Name)
}

func TestDeleteCountry(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	_, err := service.UpsertCountry(ctx, testCountry("Deletia"))
	require.NoError(t, err)

	removed, err := service.DeleteCountry(ctx, "DELETIA")
	require.NoError(t, err)
	assert.Equal(t, "Deletia", removed.Name)

	_, err = service.DeleteCountry(ctx, "Deletia")
	require.Error(t, err)
	assert.True(t, shared.IsCategory(err, shared.ErrorCategoryNotFound))
}

func TestGetStatus(t *testing.T) {
	service := setupCountryServiceTest(t)
	ctx := context.Background()

	empty, err := service.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalCountries)
	assert.Nil(t, empty.LastRefreshedAt)

	_, err = service.UpsertCountry(ctx, testCountry("One"))
	require.NoError(t, err)
	_, err = service.UpsertCountry(ctx, testCountry("Two"))
	require.NoError(t, err)

	status, err := service.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalCountries)
	require.NotNil(t, status.LastRefreshedAt)

	parsed, err := time.Parse(models.TimestampLayout, *status.LastRefreshedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

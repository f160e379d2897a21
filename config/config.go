package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	defaultCountriesAPIURL = "https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"
	defaultExchangeAPIURL  = "https://open.er-api.com/v6/latest/USD"
	defaultSummaryPath     = "cache/summary.png"
)

type Config struct {
	ServerPort           string
	DatabaseURL          string
	LogLevel             string
	CountriesAPIURL      string
	ExchangeAPIURL       string
	SummaryImagePath     string
	FetchTimeoutSeconds  string
	RefreshIntervalHours string
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		logrus.Warn("Error loading .env file, using system environment variables")
	}

	return &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CountriesAPIURL:      getEnv("COUNTRIES_API_URL", defaultCountriesAPIURL),
		ExchangeAPIURL:       getEnv("EXCHANGE_API_URL", defaultExchangeAPIURL),
		SummaryImagePath:     getEnv("SUMMARY_IMAGE_PATH", defaultSummaryPath),
		FetchTimeoutSeconds:  getEnv("FETCH_TIMEOUT_SECONDS", "20"),
		RefreshIntervalHours: getEnv("REFRESH_INTERVAL_HOURS", "0"),
	}
}

// GetFetchTimeout returns the bounded timeout applied to every external
// data request.
func (c *Config) GetFetchTimeout() time.Duration {
	seconds, err := strconv.Atoi(c.FetchTimeoutSeconds)
	if err != nil || seconds <= 0 {
		logrus.Warnf("Invalid FETCH_TIMEOUT_SECONDS value: %s, using default 20 seconds", c.FetchTimeoutSeconds)
		return 20 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

// GetRefreshInterval returns the scheduled refresh interval, or zero when
// the scheduled job is disabled.
func (c *Config) GetRefreshInterval() time.Duration {
	hours, err := strconv.Atoi(c.RefreshIntervalHours)
	if err != nil || hours < 0 {
		logrus.Warnf("Invalid REFRESH_INTERVAL_HOURS value: %s, scheduled refresh disabled", c.RefreshIntervalHours)
		return 0
	}
	return time.Duration(hours) * time.Hour
}

// ApplyLogLevel configures the global logrus level from config.
func (c *Config) ApplyLogLevel() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid LOG_LEVEL value: %s, using info", c.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

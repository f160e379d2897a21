package handlers

import (
	"context"
	"fmt"
	"os"

	"country-api/models"
	"country-api/shared"

	"github.com/gofiber/fiber/v2"
)

// CountryStore is the persistence surface the API layer reads from.
// *services.CountryService satisfies it.
type CountryStore interface {
	GetCountryByName(ctx context.Context, name string) (*models.Country, error)
	GetCountries(ctx context.Context, region, currency, sort string) ([]models.Country, error)
	DeleteCountry(ctx context.Context, name string) (*models.Country, error)
	GetStatus(ctx context.Context) (*models.StatusReport, error)
}

// Refresher runs one synchronous refresh pass.
// *services.RefreshService satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*models.RefreshSummary, error)
}

// BackgroundRefresher runs a refresh pass off the request path.
// *jobs.RefreshJob satisfies it.
type BackgroundRefresher interface {
	RunOnce()
}

type CountryHandler struct {
	Store      CountryStore
	Refresher  Refresher
	Background BackgroundRefresher
	ImagePath  string
}

func NewCountryHandler(store CountryStore, refresher Refresher, background BackgroundRefresher, imagePath string) *CountryHandler {
	return &CountryHandler{
		Store:      store,
		Refresher:  refresher,
		Background: background,
		ImagePath:  imagePath,
	}
}

// RefreshCountries triggers a refresh pass. The default variant runs
// inline and reports the upserted count; with ?async=true the pass is
// handed to a background worker and the response is only an
// acknowledgement, not a completion guarantee.
func (h *CountryHandler) RefreshCountries(c *fiber.Ctx) error {
	if c.Query("async") == "true" {
		go h.Background.RunOnce()
		return c.JSON(fiber.Map{
			"message": "Refresh started",
		})
	}

	summary, err := h.Refresher.Refresh(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(summary)
}

// GetCountries lists countries with optional region, currency and sort
// query parameters.
func (h *CountryHandler) GetCountries(c *fiber.Ctx) error {
	region := c.Query("region")
	currency := c.Query("currency")
	sort := c.Query("sort")

	countries, err := h.Store.GetCountries(c.Context(), region, currency, sort)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(countries)
}

// GetCountryByName fetches one country by case-insensitive name.
func (h *CountryHandler) GetCountryByName(c *fiber.Ctx) error {
	name := c.Params("name")

	country, err := h.Store.GetCountryByName(c.Context(), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	if country == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Country not found",
		})
	}
	return c.JSON(country)
}

// DeleteCountry removes one country by case-insensitive name.
func (h *CountryHandler) DeleteCountry(c *fiber.Ctx) error {
	name := c.Params("name")

	_, err := h.Store.DeleteCountry(c.Context(), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%s deleted successfully", name),
	})
}

// GetSummaryImage serves the last rendered summary PNG.
func (h *CountryHandler) GetSummaryImage(c *fiber.Ctx) error {
	if _, err := os.Stat(h.ImagePath); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Summary image not found",
		})
	}
	return c.SendFile(h.ImagePath)
}

// GetStatus reports the aggregate row count and latest refresh time.
func (h *CountryHandler) GetStatus(c *fiber.Ctx) error {
	status, err := h.Store.GetStatus(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(status)
}

func respondServiceError(c *fiber.Ctx, err error) error {
	if svcErr, ok := shared.AsServiceError(err); ok {
		svcErr.LogError()
		body := fiber.Map{"error": svcErr.Message}
		if svcErr.Details != nil {
			body["details"] = svcErr.Details
		}
		return c.Status(svcErr.HTTPStatus()).JSON(body)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

package main

import (
	"log"
	"time"

	"country-api/config"
	"country-api/database"
	"country-api/handlers"
	"country-api/jobs"
	"country-api/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	// Load config
	cfg := config.LoadConfig()
	cfg.ApplyLogLevel()

	// Connect to database
	if err := database.Connect(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate("database/schema.sql"); err != nil {
		log.Printf("Migration warning: %v", err)
	}

	// Initialize services
	externalService := services.NewExternalDataService(cfg.CountriesAPIURL, cfg.ExchangeAPIURL, cfg.GetFetchTimeout())
	countryService := services.NewCountryService(database.DB)
	imageService := services.NewSummaryImageService(cfg.SummaryImagePath)
	refreshService := services.NewRefreshService(externalService, countryService, imageService)

	// Background refresh job: used by ?async=true refreshes and, when
	// REFRESH_INTERVAL_HOURS is set, as a periodic scheduler.
	refreshJob := jobs.NewRefreshJob(refreshService, cfg.GetRefreshInterval())
	refreshJob.Start()

	// Initialize handlers
	countryHandler := handlers.NewCountryHandler(countryService, refreshService, refreshJob, imageService.OutputPath())

	// Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := database.HealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"error":  err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// Routes. The image route must be registered before the :name route
	// so "image" is not captured as a country name.
	app.Post("/countries/refresh", countryHandler.RefreshCountries)
	app.Get("/countries/image", countryHandler.GetSummaryImage)
	app.Get("/countries", countryHandler.GetCountries)
	app.Get("/countries/:name", countryHandler.GetCountryByName)
	app.Delete("/countries/:name", countryHandler.DeleteCountry)
	app.Get("/status", countryHandler.GetStatus)

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

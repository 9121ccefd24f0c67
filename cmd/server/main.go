package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/roadsafety-tn/accidents-backend-go/internal/api"
	"github.com/roadsafety-tn/accidents-backend-go/internal/cache"
	"github.com/roadsafety-tn/accidents-backend-go/internal/config"
	"github.com/roadsafety-tn/accidents-backend-go/internal/database"
	"github.com/roadsafety-tn/accidents-backend-go/internal/handler"
	"github.com/roadsafety-tn/accidents-backend-go/internal/repository"
	"github.com/roadsafety-tn/accidents-backend-go/internal/service"
	"github.com/roadsafety-tn/accidents-backend-go/internal/weather"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	accidents := repository.NewAccidentRepository(db)
	reports := repository.NewReportRepository(db)
	resultCache := cache.NewMemory()
	weatherClient := weather.NewClient(cfg.WeatherBaseURL)

	statsService := service.NewStatsService(accidents, reports, resultCache)
	trendService := service.NewTrendService(accidents, resultCache)
	riskService := service.NewRiskService(accidents, weatherClient, logger)
	emergencyService := service.NewEmergencyService()

	handlers := api.Handlers{
		Stats:     handler.NewStatsHandler(statsService, trendService),
		Risk:      handler.NewRiskHandler(riskService),
		Emergency: handler.NewEmergencyHandler(emergencyService),
		Admin:     handler.NewAdminHandler(resultCache),
	}

	router := api.SetupRouter(cfg, logger, handlers)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

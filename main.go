package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/nutrilog/nutrilog/internal/apperrors"
	"github.com/nutrilog/nutrilog/internal/config"
	"github.com/nutrilog/nutrilog/internal/database"
	"github.com/nutrilog/nutrilog/internal/logger"
	"github.com/nutrilog/nutrilog/internal/server"
	"github.com/nutrilog/nutrilog/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.Info("Configuration loaded successfully")

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Initialize services
	goalService := services.NewGoalService(db)
	summaryService := services.NewSummaryService(db)
	foodService := services.NewFoodService(db)
	logger.Info("Services initialized successfully")

	errHandler := apperrors.NewHandler(logger.GetLogger())
	handler := server.NewHandler(goalService, summaryService, foodService, errHandler)
	router := server.New(cfg, handler)

	logger.Infof("Listening on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		logger.Fatalf("Server stopped with error: %v", err)
	}
}

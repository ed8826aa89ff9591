package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sojeong0302/nengteol-ai-ocr/internal/classifier"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/config"
	httpserver "github.com/sojeong0302/nengteol-ai-ocr/internal/interfaces/http"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/ocr"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/receipt"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/recipe"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/repository"
	"github.com/sojeong0302/nengteol-ai-ocr/internal/storage"
	"github.com/sojeong0302/nengteol-ai-ocr/pkg/database"
	"github.com/sojeong0302/nengteol-ai-ocr/pkg/utils"
)

func main() {
	// .env is optional; real deployments set the environment directly
	gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting fridge management server",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storageClient, err := storage.NewClient(ctx, storage.Config{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize object storage client", zap.Error(err))
	}
	if storageClient.Configured() {
		if res := storageClient.EnsureBucketExists(ctx); !res.Success {
			logger.Warn("Receipt bucket unavailable, uploads will degrade to direct OCR",
				zap.String("error", res.Error))
		}
	}

	ocrClient := ocr.NewClient(ocr.Config{
		APIURL:    cfg.OCR.APIURL,
		SecretKey: cfg.OCR.SecretKey,
		Timeout:   cfg.OCR.Timeout,
	}, logger)

	foodClassifier := classifier.NewClassifier(classifier.Config{
		APIKey:          cfg.Clova.APIKey,
		BaseURL:         cfg.Clova.BaseURL,
		RequestIDPrefix: cfg.Clova.RequestIDPrefix,
		ItemsPerChunk:   cfg.Clova.ItemsPerChunk,
		Timeout:         cfg.Clova.Timeout,
	}, logger)

	recipeGenerator := recipe.NewGenerator(recipe.Config{
		APIKey:  cfg.Recipe.APIKey,
		BaseURL: cfg.Recipe.BaseURL,
		Model:   cfg.Recipe.Model,
	}, logger)

	pipeline := receipt.NewPipeline(storageClient, ocrClient, foodClassifier, logger)

	foodRepo := repository.NewFoodRepository(db.DB, logger)
	cartRepo := repository.NewCartRepository(db.DB, logger)

	handlers := httpserver.NewHandlers(pipeline, foodRepo, cartRepo, recipeGenerator, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

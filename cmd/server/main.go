package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/ai"
	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/config"
	"github.com/flowchain/flowchain/internal/ocr"
	"github.com/flowchain/flowchain/internal/repository"
	"github.com/flowchain/flowchain/internal/server"
	"github.com/flowchain/flowchain/pkg/database"
	"github.com/flowchain/flowchain/pkg/utils"
)

func main() {
	gotenv.Load()

	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
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

	logger.Info("Starting Flowchain",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
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

	// Run migrations
	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		logger.Fatal("Failed to create uploads directory", zap.Error(err))
	}

	// Initialize repositories
	deps := server.Deps{
		Logger:         logger,
		Tokens:         auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hasher:         auth.NewHasher(cfg.Auth.BcryptCost),
		Users:          repository.NewUserRepository(db.DB, logger),
		Projects:       repository.NewProjectRepository(db.DB, logger),
		Tasks:          repository.NewTaskRepository(db.DB, logger),
		Timesheets:     repository.NewTimesheetRepository(db.DB, logger),
		Partners:       repository.NewPartnerRepository(db.DB, logger),
		Products:       repository.NewProductRepository(db.DB, logger),
		Taxes:          repository.NewTaxRepository(db.DB, logger),
		SalesOrders:    repository.NewSalesOrderRepository(db.DB, logger),
		PurchaseOrders: repository.NewPurchaseOrderRepository(db.DB, logger),
		Invoices:       repository.NewInvoiceRepository(db.DB, logger),
		Expenses:       repository.NewExpenseRepository(db.DB, logger),
	}

	// Initialize receipt OCR
	recognizer := ocr.NewRecognizer(
		ocr.NewExecRunner(logger),
		cfg.OCR.TesseractPath,
		cfg.OCR.Language,
		cfg.OCR.Timeout,
		logger,
	)
	deps.Extractor = ocr.NewExtractor(recognizer, logger)

	// Category suggestion stays off without an API key
	deps.Suggester = ai.NewCategorySuggester(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger)

	srv := server.NewServer(cfg, deps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down server...")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// Command seed creates the first admin account directly, for deployments
// where the HTTP bootstrap flow is not convenient.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/flowchain/flowchain/internal/auth"
	"github.com/flowchain/flowchain/internal/config"
	"github.com/flowchain/flowchain/internal/models"
	"github.com/flowchain/flowchain/internal/repository"
	"github.com/flowchain/flowchain/pkg/database"
	"github.com/flowchain/flowchain/pkg/utils"
)

func main() {
	var (
		configFile = flag.String("config", "configs/config.yaml", "path to config file")
		name       = flag.String("name", "Administrator", "admin display name")
		email      = flag.String("email", "", "admin email (required)")
		password   = flag.String("password", "", "admin password (required)")
	)
	flag.Parse()

	gotenv.Load()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "both -email and -password are required")
		os.Exit(1)
	}
	if err := auth.ValidateEmail(*email); err != nil {
		fmt.Fprintf(os.Stderr, "invalid email: %v\n", err)
		os.Exit(1)
	}
	if err := auth.ValidatePassword(*password); err != nil {
		fmt.Fprintf(os.Stderr, "invalid password: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
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

	users := repository.NewUserRepository(db.DB, logger)

	count, err := users.Count()
	if err != nil {
		logger.Fatal("Failed to count users", zap.Error(err))
	}
	if count > 0 {
		logger.Fatal("Users already exist, refusing to seed an admin")
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	hash, err := hasher.Hash(*password)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	admin := &models.User{
		Name:     *name,
		Email:    *email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(admin); err != nil {
		logger.Fatal("Failed to create admin user", zap.Error(err))
	}

	logger.Info("Admin user created",
		zap.String("id", admin.ID),
		zap.String("email", admin.Email))
}

// Command hash-passwords rewrites every legacy plaintext credential as a bcrypt hash.
package main

import (
	"context"
	"os"

	"portfolio-cms/internal/auth"
	"portfolio-cms/internal/config"
	"portfolio-cms/internal/infrastructure/database/postgres"
	"portfolio-cms/internal/logger"
	"portfolio-cms/internal/usecase/user"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	service := user.NewService(postgres.NewUserRepository(db), auth.NewSessionManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.SessionTTL()), nil)

	migrated, err := service.MigrateLegacyPasswords(context.Background())
	if err != nil {
		logger.Error("Password migration stopped", zap.Int("migrated", migrated), zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Password migration finished", zap.Int("migrated", migrated))
}

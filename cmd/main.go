package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-cms/internal/auth"
	"portfolio-cms/internal/config"
	"portfolio-cms/internal/delivery/http/handler"
	"portfolio-cms/internal/events"
	"portfolio-cms/internal/infrastructure/database/postgres"
	"portfolio-cms/internal/infrastructure/mail"
	"portfolio-cms/internal/logger"
	"portfolio-cms/internal/routes"
	"portfolio-cms/internal/usecase/passwordreset"
	"portfolio-cms/internal/usecase/user"
	"portfolio-cms/pkg/mqtt"

	"github.com/gin-gonic/gin"
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

	logger.Info("Starting application",
		zap.String("environment", cfg.Server.Environment),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	mailer, err := mail.NewSender(cfg.Mail)
	if err != nil {
		logger.Fatal("Failed to configure mail sender", zap.Error(err))
	}

	recorders := []events.Recorder{events.NewStoreRecorder(postgres.NewAuthEventRepository(db))}
	if cfg.MQTT.Broker != "" {
		broker := mqtt.NewClient(&mqtt.Config{
			Broker:               cfg.MQTT.Broker,
			ClientID:             cfg.MQTT.ClientID,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			QoS:                  byte(cfg.MQTT.QoS),
			CleanSession:         true,
			KeepAlive:            30,
			ConnectTimeout:       10,
			AutoReconnect:        true,
			MaxReconnectInterval: time.Minute,
		}, logger.Logger)
		if err := broker.Connect(); err != nil {
			// Events still reach the database; the broker may come up later.
			logger.Error("Failed to connect to MQTT broker", zap.Error(err))
		}
		defer broker.Disconnect()
		recorders = append(recorders, events.NewMQTTRecorder(broker, cfg.MQTT.EventsTopic, 0))
	}
	recorder := events.Multi(recorders...)

	users := postgres.NewUserRepository(db)
	sessions := auth.NewSessionManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.SessionTTL())
	userService := user.NewService(users, sessions, recorder)
	resetService := passwordreset.NewService(users, postgres.NewResetTokenRepository(db), mailer, recorder, passwordreset.Policy{
		RevealUnknownEmail: cfg.Reset.RevealUnknownEmail,
		BaseURL:            cfg.App.BaseURL,
		MaxRequestsPerHour: cfg.Reset.MaxRequestsPerHour,
		MailTimeout:        cfg.MailTimeout(),
	})

	if cfg.Seed.AdminEmail != "" {
		created, err := userService.EnsureAdmin(context.Background(), cfg.Seed.AdminEmail, cfg.Seed.AdminPassword, cfg.Seed.AdminName)
		if err != nil {
			logger.Fatal("Failed to seed admin account", zap.Error(err))
		}
		if !created {
			logger.Info("Admin account already present", zap.String("email", cfg.Seed.AdminEmail))
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.SetupRoutes(cfg, sessions, routes.Handlers{
		Auth:   handler.NewAuthHandler(userService, resetService),
		Users:  handler.NewUserHandler(userService),
		Health: handler.NewHealthHandler(db),
	})
	if err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}
	defer router.Stop()

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			zap.String("address", addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}
	resetService.Wait()

	log.Println("Server exited properly")
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/app"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/handlers"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/router"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default config.yaml)")
	flag.Parse()

	logger := logrus.New()

	if err := config.LoadConfig(*configPath); err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.AppConfig
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize services")
	}
	defer container.Close()

	engine := router.New(router.Handlers{
		Vault:     handlers.NewVaultHandler(container.Vault, container.AuthManager, logger),
		Admin:     handlers.NewAdminHandler(container.AuthRepo, logger),
		AdminAuth: handlers.NewAdminAuthHandler(logger),
		WebSocket: handlers.NewWebSocketHandler(container.Stream, logger),
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}

func configureLogger(logger *logrus.Logger, cfg *config.Config) {
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Log.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
}

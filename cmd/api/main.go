package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/config"
	"github.com/AlexFame/bazaar-sub001/internal/db"
	"github.com/AlexFame/bazaar-sub001/internal/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Set via -ldflags at build time.
var (
	gitSHA    = "dev"
	buildTime = ""
)

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = lvl
	return zcfg.Build()
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("db connect error", zap.Error(err))
	}
	if err := db.Migrate(conn); err != nil {
		logger.Fatal("auto migrate error", zap.Error(err))
	}

	srv := server.New(conn, cfg, logger, server.Options{GitSHA: gitSHA, BuildTime: buildTime})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/app"
	"github.com/octobees/leads-generator/enricher/internal/auth"
	"github.com/octobees/leads-generator/enricher/internal/config"
	"github.com/octobees/leads-generator/enricher/internal/database"
	"github.com/octobees/leads-generator/enricher/internal/handler"
	"github.com/octobees/leads-generator/enricher/internal/logging"
	middlewarepkg "github.com/octobees/leads-generator/enricher/internal/middleware"
	"github.com/octobees/leads-generator/enricher/internal/repository"
	"github.com/octobees/leads-generator/enricher/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	var opts app.Options
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err == nil {
			err = database.EnsureSchema(ctx, pool)
		}
		cancel()
		if err != nil {
			log.Fatalf("failed to prepare history database: %v", err)
		}
		defer pool.Close()
		opts.Repository = repository.NewPGXEnrichmentsRepository(pool)
	} else {
		log.Info("DATABASE_URL not set, enrichment history disabled")
	}

	components := app.New(cfg, log, opts)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Enrichment: handler.NewEnrichmentHandler(components.Service),
		Health: handler.HealthInfo{
			History:  components.Service.HistoryEnabled(),
			Headless: components.Browser != nil,
		},
	})

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "headless": components.Browser != nil}).Info("enrichment api listening")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("graceful shutdown failed: %v", err)
	}
}

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
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/app"
	"github.com/bara-directory/seeder/internal/auth"
	"github.com/bara-directory/seeder/internal/catalog"
	"github.com/bara-directory/seeder/internal/config"
	"github.com/bara-directory/seeder/internal/handler"
	"github.com/bara-directory/seeder/internal/logger"
	"github.com/bara-directory/seeder/internal/metrics"
	middlewarepkg "github.com/bara-directory/seeder/internal/middleware"
	"github.com/bara-directory/seeder/internal/pipeline"
	"github.com/bara-directory/seeder/internal/resolver"
	"github.com/bara-directory/seeder/internal/router"
	"github.com/bara-directory/seeder/internal/service"
	"github.com/bara-directory/seeder/internal/sink"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	pools, err := catalog.Load(cfg.PoolsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load pools")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mode := sink.ParseMode(cfg.ImportMode == string(sink.ModeUpsert))
	stack, err := app.Open(ctx, cfg, app.Options{Mode: mode})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open infrastructure")
	}
	defer stack.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	m := metrics.New()

	runnerOpts := stack.RunnerOptions(cfg, mode)
	runnerOpts.Observer = m
	runnerOpts.Recorder = m
	runner := service.NewRunner(stack.Destination, stack.Resolver(resolver.DescribeIn(cfg.DefaultCountry)), service.NewNormalizer(cfg.DefaultCountry, pools), runnerOpts)

	authService := service.NewAuthService(cfg.AdminEmail, cfg.AdminPasswordHash, jwtManager)
	businessesService := service.NewBusinessesService(stack.Lister)
	generatorService := service.NewGeneratorService(pools, stack.Storage)
	sqlService := service.NewSQLService(service.NewNormalizer(cfg.DefaultCountry, pools), stack.Storage, pipeline.Observer(m))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.BodyLimit("32M"))

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Businesses: handler.NewBusinessesHandler(businessesService),
		Imports:    handler.NewImportHandler(runner),
		Generate:   handler.NewGenerateHandler(generatorService),
		SQL:        handler.NewSQLHandler(sqlService),
		Metrics:    m.Handler(),
	})

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("destination", stack.Destination.Name()).Msg("api listening")
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

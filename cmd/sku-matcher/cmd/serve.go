package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/refurb-sku-matcher/internal/api/handlers"
	mw "github.com/donaldgifford/refurb-sku-matcher/internal/api/middleware"
	"github.com/donaldgifford/refurb-sku-matcher/internal/engine"
	"github.com/donaldgifford/refurb-sku-matcher/internal/tracing"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and rematch scheduler",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing.Tracing())
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("flushing traces failed", "error", err)
		}
	}()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	res := newResolver(cfg, s, logger)
	eng := newEngine(cfg, s, res, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(mw.Recovery(logger))
	e.Use(mw.RequestLog(logger))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(s)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("SKU Matcher API", Version))
	handlers.RegisterMatchRoutes(api, handlers.NewMatchHandler(res))
	handlers.RegisterDeviceRoutes(api, handlers.NewDevicesHandler(eng, s))
	handlers.RegisterRematchRoutes(api, handlers.NewRematchHandler(eng))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(s))

	var sched *engine.Scheduler
	if cfg.Schedule.RematchInterval > 0 {
		sched, err = engine.NewScheduler(eng, s, cfg.Schedule.RematchInterval, cfg.Schedule.StaleJobThreshold, logger)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
	} else {
		logger.Info("rematch scheduler disabled")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "addr", addr, "version", Version)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	if sched != nil {
		<-sched.Stop().Done()
	}

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

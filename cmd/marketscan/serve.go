package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/marketscan/internal/api/http"
	"github.com/i474232898/marketscan/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		service, err := buildService(ctx)
		if err != nil {
			return err
		}
		// The API answers 503 until a reload succeeds.
		_ = service.Reload(ctx)

		// Scheduler that periodically reloads the dataset.
		sched := scheduler.New(cfg.ReloadInterval, service, logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		app := fiber.New(fiber.Config{
			AppName:               "marketscan",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          cfg.PredictTimeout + 5*time.Second,
			ErrorHandler:          httpapi.ErrorHandler,
		})

		// Global middleware
		app.Use(fiberlogger.New())
		app.Use(recover.New())
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
			AllowMethods: "GET,POST,OPTIONS",
		}))

		httpapi.RegisterRoutes(app, service, cfg.FeaturedLimit)

		go func() {
			if err := app.Listen(":" + cfg.Port); err != nil {
				logger.Error().Err(err).Msg("fiber server stopped")
			}
		}()
		logger.Info().Str("port", cfg.Port).Msg("listening")

		// Wait for termination signal
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
		return nil
	},
}

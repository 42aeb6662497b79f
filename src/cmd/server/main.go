package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	httpadapter "filmgraph/src/adapters/http"
	"filmgraph/src/app"
	"filmgraph/src/helper/env"
	"filmgraph/src/services/engagement"
	"filmgraph/src/services/friendship"
	"filmgraph/src/services/ranking"
	"filmgraph/src/services/recommendation"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting API server with Uber Fx...")

	fxApp := fx.New(
		app.Module,
		fx.Supply(app.KafkaConfig{}),

		// Providers
		fx.Provide(newServer),

		// Invocations
		fx.Invoke(registerServerHooks),
	)

	// Start the application
	if err := fxApp.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for app to exit gracefully
	<-fxApp.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fxApp.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application gracefully: %v", err)
	}
}

func newServer(
	logger *slog.Logger,
	reg *prometheus.Registry,
	healthChecks app.HealthChecks,
	friendshipService *friendship.FriendshipService,
	engagementService *engagement.EngagementService,
	rankingService *ranking.RankingService,
	recommendationService *recommendation.RecommendationService,
) *httpadapter.Server {
	port := env.GetInt("SERVER_PORT", 8888)

	return httpadapter.NewServer(
		logger,
		port,
		friendshipService,
		engagementService,
		rankingService,
		recommendationService,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		healthChecks,
	)
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *slog.Logger, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// Start server in a separate goroutine
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("Server failed", "error", err)
					shutdowner.Shutdown(fx.ExitCode(1)) //nolint:errcheck
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			// Create timeout context for graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server forced to shutdown", "error", err)
				return err
			}
			logger.Info("Server exited gracefully")
			return nil
		},
	})
}

// Package main provides the entrypoint for the AirSight cache warming worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/iqair"
	"github.com/airsight/airsight/internal/airquality/openaq"
	"github.com/airsight/airsight/internal/airquality/waqi"
	"github.com/airsight/airsight/internal/cache"
	"github.com/airsight/airsight/internal/config"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/weather"
	"github.com/airsight/airsight/internal/weather/weatherapi"
	"github.com/airsight/airsight/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "airsight-worker").
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The worker writes through the shared Redis cache so the API serves
	// warm data. Without Redis the warm-up only fills a process-local cache,
	// which is useless across processes.
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisStore, redisErr := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if redisErr != nil {
			log.Fatal().Err(redisErr).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set - warmed cache is not shared with the API")
	}

	var providers []airquality.Provider
	if cfg.OpenAQAPIKey != "" {
		providers = append(providers, openaq.NewClient(openaq.ClientConfig{
			APIKey:     cfg.OpenAQAPIKey,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: openaq.ProviderName, Logger: log}),
		}))
	}
	if cfg.WAQIToken != "" {
		providers = append(providers, waqi.NewClient(waqi.ClientConfig{
			Token:      cfg.WAQIToken,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: waqi.ProviderName, Logger: log}),
		}))
	}
	if cfg.IQAirAPIKey != "" {
		providers = append(providers, iqair.NewClient(iqair.ClientConfig{
			APIKey:     cfg.IQAirAPIKey,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: iqair.ProviderName, Logger: log}),
		}))
	}

	airService := airquality.NewService(airquality.ServiceConfig{
		Providers: providers,
		Store:     store,
		Logger:    log,
		CacheTTL:  cfg.SnapshotTTL,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:     cfg.WeatherAPIKey,
			HTTPClient: resilience.NewClient(resilience.ClientConfig{Name: weatherapi.ProviderName, Logger: log}),
		}),
		Logger: log,
	})

	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Logger:            log,
		AirQualityService: airService,
		WeatherService:    weatherService,
	})

	// Jobs arrive over Pub/Sub when configured. Otherwise fall back to a
	// local ticker so the worker is still useful in development.
	if cfg.PubSubProjectID != "" && cfg.PubSubSubscription != "" {
		handler, handlerErr := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        cfg.PubSubProjectID,
			SubscriptionName: cfg.PubSubSubscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if handlerErr != nil {
			log.Fatal().Err(handlerErr).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if receiveErr := handler.Start(ctx); receiveErr != nil && ctx.Err() == nil {
				log.Fatal().Err(receiveErr).Msg("pubsub receive failed")
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - running on a local ticker")
		go func() {
			ticker := time.NewTicker(cfg.RefreshInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					refreshJob.Run(ctx)
				}
			}
		}()
	}

	// Health endpoint for Cloud Run
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

// Package main provides the entrypoint for the AirSight API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/ai"
	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/airquality/iqair"
	"github.com/airsight/airsight/internal/airquality/openaq"
	"github.com/airsight/airsight/internal/airquality/waqi"
	"github.com/airsight/airsight/internal/alert"
	"github.com/airsight/airsight/internal/analysis"
	"github.com/airsight/airsight/internal/api"
	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/auth"
	"github.com/airsight/airsight/internal/cache"
	"github.com/airsight/airsight/internal/config"
	"github.com/airsight/airsight/internal/database"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/refresher"
	"github.com/airsight/airsight/internal/telemetry"
	"github.com/airsight/airsight/internal/weather"
	"github.com/airsight/airsight/internal/weather/weatherapi"
	"github.com/airsight/airsight/internal/ws"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "airsight-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AirSight API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	subsystems := make(map[string]handler.Pinger)

	// Connect to Postgres when configured; in-memory repositories otherwise.
	// Alert and analysis history does not survive a restart without it.
	var pool *pgxpool.Pool
	if os.Getenv("DB_HOST") != "" {
		dbConfig := database.ConfigFromEnv()
		pool, err = database.Connect(ctx, dbConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		subsystems["postgres"] = pool
		log.Info().
			Str("host", dbConfig.Host).
			Str("database", dbConfig.Database).
			Msg("database connected")
	} else {
		log.Warn().Msg("DB_HOST not set - alert and analysis history is in-memory only")
	}

	// Snapshot cache: Redis when configured, process-local otherwise.
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
		subsystems["redis"] = redisStore
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis connected")
	} else {
		store = cache.NewMemoryStore()
		log.Warn().Msg("REDIS_ADDR not set - snapshot cache is process-local")
	}

	// Air quality providers. Each gets its own circuit breaker, registered
	// for the ops status endpoint. Providers without credentials are skipped.
	registry := resilience.NewRegistry()
	var providers []airquality.Provider

	if cfg.OpenAQAPIKey != "" {
		client := resilience.NewClient(resilience.ClientConfig{Name: openaq.ProviderName, Logger: log})
		registry.Register(openaq.ProviderName, client)
		providers = append(providers, openaq.NewClient(openaq.ClientConfig{
			APIKey:     cfg.OpenAQAPIKey,
			HTTPClient: client,
		}))
	}
	if cfg.WAQIToken != "" {
		client := resilience.NewClient(resilience.ClientConfig{Name: waqi.ProviderName, Logger: log})
		registry.Register(waqi.ProviderName, client)
		providers = append(providers, waqi.NewClient(waqi.ClientConfig{
			Token:      cfg.WAQIToken,
			HTTPClient: client,
		}))
	}
	if cfg.IQAirAPIKey != "" {
		client := resilience.NewClient(resilience.ClientConfig{Name: iqair.ProviderName, Logger: log})
		registry.Register(iqair.ProviderName, client)
		providers = append(providers, iqair.NewClient(iqair.ClientConfig{
			APIKey:     cfg.IQAirAPIKey,
			HTTPClient: client,
		}))
	}

	if len(providers) == 0 {
		log.Warn().Msg("no air quality provider configured - air endpoints will fail")
	}

	airService := airquality.NewService(airquality.ServiceConfig{
		Providers: providers,
		Store:     store,
		Registry:  registry,
		Metrics:   providerMetrics,
		Logger:    log,
		CacheTTL:  cfg.SnapshotTTL,
	})
	log.Info().Int("providers", len(providers)).Msg("air quality service initialized")

	// Weather
	weatherClient := resilience.NewClient(resilience.ClientConfig{Name: weatherapi.ProviderName, Logger: log})
	registry.Register(weatherapi.ProviderName, weatherClient)
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: weatherapi.NewClient(weatherapi.ClientConfig{
			APIKey:     cfg.WeatherAPIKey,
			HTTPClient: weatherClient,
		}),
		Logger: log,
	})

	// Alerts and analyses persist to Postgres when available.
	alertServiceConfig := alert.ServiceConfig{Logger: log}
	analysisServiceConfig := analysis.ServiceConfig{Logger: log}
	if pool != nil {
		alertServiceConfig.Repository = alert.NewPostgresRepository(pool)
		analysisServiceConfig.Repository = analysis.NewPostgresRepository(pool)
	}
	alertService := alert.NewService(alertServiceConfig)
	analysisService := analysis.NewService(analysisServiceConfig)

	// Narrative generation (optional)
	var completer ai.Completer
	if cfg.AIAPIKey != "" {
		completer = ai.NewClient(ai.ClientConfig{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
		})
		log.Info().Str("model", cfg.AIModel).Msg("narrative generation enabled")
	} else {
		log.Warn().Msg("AI_API_KEY not set - analyses will have no narrative")
	}
	aiService := ai.NewService(ai.ServiceConfig{Completer: completer, Logger: log})

	// Live updates
	hub := ws.NewHub(ws.HubConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         log,
	})

	// Periodic refresh cycle
	refreshLoop := refresher.New(refresher.Config{
		Snapshots: airService,
		Alerts:    alertService,
		Analyzer:  analysisService,
		Narrator:  aiService,
		Hub:       hub,
		Interval:  cfg.RefreshInterval,
		Logger:    log,
	})

	runCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go func() {
		if runErr := refreshLoop.Run(runCtx); runErr != nil && runErr != context.Canceled {
			log.Error().Err(runErr).Msg("refresh loop stopped")
		}
	}()

	// Auth
	if cfg.JWTSigningKey == "" {
		cfg.JWTSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtService := auth.NewJWTService(auth.JWTConfig{SigningKey: cfg.JWTSigningKey})

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		AllowedOrigins:  cfg.AllowedOrigins,
		Services:        cfg.ConfiguredProviders(),
		Subsystems:      subsystems,
		JWTService:      jwtService,
		AirService:      airService,
		WeatherService:  weatherService,
		AlertService:    alertService,
		AnalysisService: analysisService,
		Refresher:       refreshLoop,
		Registry:        registry,
		Hub:             hub,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopRefresh()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

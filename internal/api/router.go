// Package api provides the HTTP API for AirSight.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/airsight/airsight/internal/airquality"
	"github.com/airsight/airsight/internal/alert"
	"github.com/airsight/airsight/internal/analysis"
	"github.com/airsight/airsight/internal/api/handler"
	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/auth"
	"github.com/airsight/airsight/internal/provider/resilience"
	"github.com/airsight/airsight/internal/weather"
	"github.com/airsight/airsight/internal/ws"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	// CORS allow-list for the dashboard frontend.
	AllowedOrigins []string

	// Services flags which external services have credentials configured,
	// surfaced on the health endpoint.
	Services map[string]bool

	// Subsystems are pinged by the readiness check.
	Subsystems map[string]handler.Pinger

	JWTService      *auth.JWTService
	AirService      *airquality.Service
	WeatherService  *weather.Service
	AlertService    *alert.Service
	AnalysisService *analysis.Service
	Refresher       handler.CycleRunner
	Registry        *resilience.Registry
	Hub             *ws.Hub
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "airsight-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:    cfg.Version,
		BuildTime:  cfg.BuildTime,
		Services:   cfg.Services,
		Subsystems: cfg.Subsystems,
		Registry:   cfg.Registry,
		AirService: cfg.AirService,
		Hub:        cfg.Hub,
	})
	airHandler := handler.NewAirHandler(cfg.AirService)
	weatherHandler := handler.NewWeatherHandler(cfg.WeatherService)
	alertHandler := handler.NewAlertHandler(cfg.AlertService)
	analysisHandler := handler.NewAnalysisHandler(cfg.AirService, cfg.AnalysisService)
	adminHandler := handler.NewAdminHandler(cfg.AirService, cfg.WeatherService, cfg.Refresher, cfg.Logger)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.JWTService)

	// Create rate limit middleware for different endpoint categories
	adminRateLimit := middleware.RateLimitByIP(middleware.AdminRateLimit)         // 10 req/min
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Websocket endpoint bypasses JSON middleware; the hub handles the
		// upgrade handshake itself.
		r.Get("/ws/dashboard", cfg.Hub.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.ContentTypeJSON)

			// Ops endpoints (public)
			r.Route("/ops", func(r chi.Router) {
				r.Get("/health", opsHandler.HealthCheck)
				r.Get("/ready", opsHandler.ReadinessCheck)
				// Status endpoint requires authentication
				r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
			})

			// Air quality endpoints (public) - standard rate limiting
			r.Route("/air", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/current", airHandler.Current)
				r.Get("/zones", airHandler.Zones)
				r.Get("/zones/{zoneID}", airHandler.Zone)
				r.Get("/hotspots", analysisHandler.Hotspots)
			})

			// Weather endpoint (public) - standard rate limiting
			r.With(standardRateLimit).Get("/weather/current", weatherHandler.Current)

			// Alert endpoints (public) - standard rate limiting
			r.Route("/alerts", func(r chi.Router) {
				r.Use(standardRateLimit)
				r.Get("/", alertHandler.Active)
				r.Get("/history", alertHandler.History)
			})

			// Recommendations endpoint (public) - standard rate limiting
			r.With(standardRateLimit).Get("/recommendations", analysisHandler.Recommendations)

			// Analysis endpoints - the trigger is expensive compute
			r.Route("/analysis", func(r chi.Router) {
				r.With(expensiveRateLimit).Post("/", analysisHandler.Trigger)
				r.With(standardRateLimit).Get("/", analysisHandler.History)
				r.With(standardRateLimit).Get("/latest", analysisHandler.Latest)
			})

			// Admin endpoints (authenticated) - for operator actions
			r.Route("/admin", func(r chi.Router) {
				r.Use(authMiddleware)
				r.Use(adminRateLimit)
				r.Post("/cache/clear", adminHandler.ClearCache)
				r.Post("/refresh", adminHandler.Refresh)
			})
		})
	})

	return r
}

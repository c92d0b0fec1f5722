package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/Harshitk-cp/elders/internal/api/handlers"
	mw "github.com/Harshitk-cp/elders/internal/api/middleware"
	"github.com/Harshitk-cp/elders/internal/buildconfig"
	"github.com/Harshitk-cp/elders/internal/config"
	"github.com/Harshitk-cp/elders/internal/domain"
	"github.com/Harshitk-cp/elders/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the router and background services for lifecycle management.
type App struct {
	Router    *chi.Mux
	Sessions  *service.SessionService
	history   domain.CycleStore
	metrics   mw.Metrics
	startTime time.Time
	stopCh    chan struct{}
}

// NewApp wires the HTTP API around sessions. history may be nil.
func NewApp(sessions *service.SessionService, history domain.CycleStore, logger *zap.Logger) *App {
	sessionHandler := handlers.NewSessionHandler(sessions, logger)
	personaHandler := handlers.NewPersonaHandler()

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Sessions:  sessions,
		history:   history,
		startTime: time.Now(),
		stopCh:    make(chan struct{}),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)                                                             // Generate/extract request ID first
	r.Use(middleware.RealIP)                                                        // Extract real IP
	r.Use(app.metrics.Middleware)                                                   // Collect metrics
	r.Use(mw.Logging(logger))                                                       // Log all requests
	r.Use(middleware.Recoverer)                                                     // Recover from panics
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst(), app.stopCh)) // Rate limiting

	// No auth
	r.Get("/health", app.healthHandler())
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.BearerToken(config.APIToken()))

		r.Route("/personas", func(r chi.Router) {
			r.Get("/", personaHandler.List)
			r.Get("/{id}", personaHandler.Get)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Delete("/", sessionHandler.Delete)
				r.Post("/scenario", sessionHandler.SubmitScenario)
				r.Post("/accept", sessionHandler.Accept)
				r.Post("/critique", sessionHandler.ForceCritique)
				r.Post("/critique/retry", sessionHandler.RetryCritiques)
				r.Post("/challenge", sessionHandler.Challenge)
				r.Post("/challenge/response", sessionHandler.SubmitChallenge)
				r.Post("/conclude/base", sessionHandler.ConcludeBase)
				r.Post("/conclude", sessionHandler.ConcludeCycle)
				r.Post("/scores/reset", sessionHandler.ResetScores)
				r.Get("/history", sessionHandler.History)
				r.Get("/transcript.pdf", sessionHandler.Transcript)
			})
		})
	})

	return app
}

// Close stops the router's background work.
func (app *App) Close() {
	close(app.stopCh)
}

func (app *App) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if app.history != nil {
			if err := app.history.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds":  uptime.Seconds(),
			"uptime_human":    uptime.Round(time.Second).String(),
			"requests":        app.metrics.Snapshot(),
			"active_sessions": app.Sessions.Count(),
			"history_enabled": app.Sessions.HistoryEnabled(),
			"goroutines":      runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		writeJSON(w, http.StatusOK, response)
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildconfig.VersionInfo())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package api exposes the insights engine over HTTP. Handlers stay
// thin: parse parameters, call a service, wrap the answer in the
// response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"wellbeing-insights-go/internal/actions"
	"wellbeing-insights-go/internal/directory"
	"wellbeing-insights-go/internal/ingest"
	"wellbeing-insights-go/internal/logger"
	"wellbeing-insights-go/internal/recommend"
	"wellbeing-insights-go/internal/risk"
	"wellbeing-insights-go/internal/season"
	"wellbeing-insights-go/internal/theme"
)

const serviceName = "wellbeing-insights"

// Deps collects the services the HTTP layer fronts.
type Deps struct {
	Engine    *risk.Engine
	Seasons   *season.Analyzer
	Themes    *theme.Analyzer
	Actions   *actions.Log
	Recommend *recommend.Generator
	Ingest    *ingest.Service
	Directory *directory.Directory
}

type Server struct {
	deps Deps
	log  *logrus.Entry
	now  func() time.Time
}

func NewServer(deps Deps, lg *logger.Logger) *Server {
	return &Server{
		deps: deps,
		log:  lg.Component("api"),
		now:  time.Now,
	}
}

// Router builds the route tree. The Prometheus endpoint is mounted by
// the caller so the router stays free of process-level concerns.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", s.getMetrics)
			r.Get("/percentage", s.getMetricsPercentage)
		})

		r.Route("/season", func(r chi.Router) {
			r.Get("/insights", s.getSeasonInsights)
			r.Get("/top-events", s.getTopEvents)
		})

		r.Route("/theme", func(r chi.Router) {
			r.Get("/insights", s.getThemeInsights)
			r.Get("/recent-feedback", s.getRecentFeedback)
		})

		r.Route("/actions", func(r chi.Router) {
			r.Post("/", s.createAction)
			r.Get("/", s.listActions)
			r.Patch("/{actionID}/status", s.updateActionStatus)
		})

		r.Post("/recommendations", s.generateRecommendations)

		r.Route("/upload", func(r chi.Router) {
			r.Post("/", s.uploadFile)
			r.Get("/tasks/{taskID}", s.uploadStatus)
		})

		r.Get("/departments", s.listDepartments)
		r.Get("/managers", s.listManagers)
	})

	return r
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Service   string    `json:"service"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: s.now().UTC(),
		Version:   "1.0.0",
		Service:   serviceName,
	})
}

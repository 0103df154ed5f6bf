// Package v1alpha1 serves the bestiary JSON API
package v1alpha1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/gorilla/mux"

	"github.com/KirkDiggler/bestiary/internal/errors"
	"github.com/KirkDiggler/bestiary/internal/orchestrators/catalog"
	navsession "github.com/KirkDiggler/bestiary/internal/repositories/nav_session"
)

const apiPrefix = "/v1alpha1"

// ImageResolver turns a relative image path into an absolute URL
type ImageResolver interface {
	ImageURL(path string) string
}

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	CatalogService    catalog.Service
	SessionRepository navsession.Repository
	// Images resolves stat block image paths (optional)
	Images ImageResolver
	// Roller draws random monsters (optional, defaults to dice.DefaultRoller)
	Roller dice.Roller
	// SessionTTL is the idle lifetime of a navigation session (optional)
	SessionTTL time.Duration
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config cannot be nil")
	}

	vb := errors.NewValidationBuilder()
	if c.CatalogService == nil {
		vb.RequiredField("CatalogService")
	}
	if c.SessionRepository == nil {
		vb.RequiredField("SessionRepository")
	}
	if c.SessionTTL < 0 {
		vb.InvalidField("SessionTTL", "must not be negative")
	}
	if err := vb.Build(); err != nil {
		return err
	}

	if c.Roller == nil {
		c.Roller = dice.DefaultRoller
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = navsession.DefaultTTL
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// Handler implements the bestiary HTTP API
type Handler struct {
	catalog    catalog.Service
	sessions   navsession.Repository
	images     ImageResolver
	roller     dice.Roller
	sessionTTL time.Duration
	logger     *slog.Logger
	router     *mux.Router
}

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	h := &Handler{
		catalog:    cfg.CatalogService,
		sessions:   cfg.SessionRepository,
		images:     cfg.Images,
		roller:     cfg.Roller,
		sessionTTL: cfg.SessionTTL,
		logger:     cfg.Logger,
	}
	h.router = h.routes()
	return h, nil
}

// ServeHTTP dispatches to the API routes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.logRequests)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.writeError(w, errors.NotFound("route not found"))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "METHOD_NOT_ALLOWED", Message: "method not allowed"})
	})

	r.HandleFunc(apiPrefix+"/catalog", h.GetCatalog).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/catalog:refresh", h.RefreshCatalog).Methods(http.MethodPost)

	r.HandleFunc(apiPrefix+"/monsters", h.ListMonsters).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/monsters/{index}", h.GetMonster).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/filters", h.GetFilters).Methods(http.MethodGet)

	r.HandleFunc(apiPrefix+"/sessions", h.CreateSession).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/sessions/{id}", h.DeleteSession).Methods(http.MethodDelete)
	r.HandleFunc(apiPrefix+"/sessions/{id}/next", h.NextMonster).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}/previous", h.PreviousMonster).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}/random", h.RandomMonster).Methods(http.MethodPost)
	r.HandleFunc(apiPrefix+"/sessions/{id}/select", h.SelectMonster).Methods(http.MethodPost)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		h.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// Package api exposes the vega HTTP surface: apps and users CRUD,
// per-app file listings, and single-file / full-archive downloads.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/files"
	"github.com/oriys/vega/internal/logging"
	"github.com/oriys/vega/internal/metrics"
	"github.com/oriys/vega/internal/turso"
)

// healthTimeout bounds the remote probe issued by the health routes.
const healthTimeout = 2 * time.Second

// Repository is the slice of the store the handlers consume. The
// concrete *store.Store satisfies it; tests substitute fakes.
type Repository interface {
	Ping(ctx context.Context) error
	ListApps(ctx context.Context) ([]domain.App, error)
	GetApp(ctx context.Context, appID string) (*domain.App, error)
	CreateUser(ctx context.Context, username, email string, steamID *string) (int64, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

// Handler serves all vega API routes.
type Handler struct {
	Repo    Repository
	Files   *files.Aggregator
	Version string
}

// RegisterRoutes registers all routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Root)

	// Health probes
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /health/live", h.HealthLive)
	mux.HandleFunc("GET /health/ready", h.Health)

	// Apps catalog (read-only)
	mux.HandleFunc("GET /apps", h.ListApps)
	mux.HandleFunc("GET /apps/{app_id}", h.GetApp)

	// Users
	mux.HandleFunc("POST /users", h.CreateUser)
	mux.HandleFunc("GET /users", h.ListUsers)
	mux.HandleFunc("GET /users/{id}", h.GetUser)
	mux.HandleFunc("DELETE /users/{id}", h.DeleteUser)

	// Files
	mux.HandleFunc("GET /files/{app_id}", h.ListFiles)
	mux.HandleFunc("GET /download/file/{file_id}", h.DownloadFile)
	mux.HandleFunc("GET /download/app/{app_id}", h.DownloadApp)

	// Observability
	mux.HandleFunc("GET /stats", h.Stats)
	mux.Handle("GET /metrics", metrics.PrometheusHandler())
}

// envelope is the uniform JSON response body for every API route.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.Op().Warn("encode response", "error", err)
	}
}

func respondOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Data: nil})
}

// respondStoreError maps a repository failure onto the API taxonomy:
// remote statement failures are server faults, except constraint
// violations which the caller caused.
func respondStoreError(w http.ResponseWriter, err error) {
	if turso.IsConstraintViolation(err) {
		respondError(w, http.StatusBadRequest, "username, email or steam_id already exists")
		return
	}
	var qe *turso.QueryError
	if errors.As(err, &qe) {
		logging.Op().Error("remote query failed", "error", err)
		respondError(w, http.StatusInternalServerError, "database error")
		return
	}
	logging.Op().Error("request failed", "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

// Root handles GET / with a service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "vega is running", map[string]string{
		"service": "vega",
		"version": h.Version,
	})
}

// Health handles GET /health and GET /health/ready: probes the remote
// database and reports 503 when it does not answer.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.Repo.Ping(ctx); err != nil {
		logging.Op().Warn("health probe failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	respondOK(w, "healthy", map[string]string{"database": "ok"})
}

// HealthLive handles GET /health/live: the process is up.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "alive", nil)
}

// Stats handles GET /stats with a snapshot of the process counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	respondOK(w, "stats", metrics.Global().GetSnapshot())
}

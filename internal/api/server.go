package api

import (
	"net/http"

	"github.com/oriys/vega/internal/config"
	"github.com/oriys/vega/internal/files"
	"github.com/oriys/vega/internal/logging"
	"github.com/oriys/vega/internal/observability"
	"github.com/oriys/vega/internal/ratelimit"
)

// downloadPrefixes are the routes covered by the rate limiter.
var downloadPrefixes = []string{"/download/"}

// ServerConfig contains dependencies for the HTTP server.
type ServerConfig struct {
	Repo    Repository
	Files   *files.Aggregator
	Limiter *ratelimit.Limiter // nil disables rate limiting
	Server  config.ServerConfig
	CORS    config.CORSConfig
	Version string
}

// NewHandler assembles the routed handler with the full middleware
// chain. The access log sits innermost so it sees the matched route
// pattern; the request id is assigned outermost so everything below
// logs it.
func NewHandler(cfg ServerConfig) http.Handler {
	mux := http.NewServeMux()

	h := &Handler{
		Repo:    cfg.Repo,
		Files:   cfg.Files,
		Version: cfg.Version,
	}
	h.RegisterRoutes(mux)

	var handler http.Handler = mux
	handler = AccessLog(handler)
	handler = observability.HTTPMiddleware(handler)
	if cfg.Limiter != nil {
		handler = ratelimit.Middleware(cfg.Limiter, downloadPrefixes)(handler)
	}
	handler = CORS(cfg.CORS)(handler)
	handler = RequestID(handler)
	return handler
}

// StartHTTPServer creates and starts the HTTP server. The listener
// runs on its own goroutine; the caller owns shutdown.
func StartHTTPServer(cfg ServerConfig) *http.Server {
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     NewHandler(cfg),
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	go func() {
		logging.Op().Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Op().Error("HTTP server error", "error", err)
		}
	}()

	return server
}

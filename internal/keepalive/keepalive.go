// Package keepalive periodically pings the remote database so the
// hosted instance is not idled between requests. It is a plain timer
// loop outside the query path; failures are logged, never fatal.
package keepalive

import (
	"context"
	"time"

	"github.com/oriys/vega/internal/logging"
)

// Pinger issues the liveness probe. *store.Store satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Run pings at the given interval until ctx is canceled. It blocks;
// callers start it on its own goroutine.
func Run(ctx context.Context, p Pinger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Ping(ctx); err != nil {
				logging.Op().Warn("keep-alive ping failed", "error", err)
				continue
			}
			logging.Op().Debug("keep-alive ping ok")
		}
	}
}

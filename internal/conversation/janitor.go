package conversation

import (
	"context"
	"time"
)

// PruneIdle forgets conversations without activity for longer than ttl.
func (e *Engine) PruneIdle(ctx context.Context, ttl time.Duration) int {
	removed := e.sessions.Prune(e.cfg.Clock().Add(-ttl))
	e.metrics.ActiveSessions.Set(float64(e.sessions.Len()))
	if removed > 0 {
		e.log.InfoContext(ctx, "Pruned idle conversations", "removed", removed, "ttl", ttl)
	}
	return removed
}

// RunJanitor prunes idle conversations every interval until ctx is done.
func (e *Engine) RunJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.PruneIdle(ctx, ttl)
		}
	}
}

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db       Pinger
	telegram Pinger
	log      *slog.Logger
}

func NewHealthChecker(log *slog.Logger, db Pinger, telegram Pinger) *HealthChecker {
	return &HealthChecker{
		db:       db,
		telegram: telegram,
		log:      log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	var err error
	status := make(map[string]string)
	overallStatus := http.StatusOK

	if err = h.db.Ping(req.Context()); err != nil {
		status["database"] = "unavailable"
		overallStatus = http.StatusServiceUnavailable
		h.log.WarnContext(req.Context(), "Health check failed: DB ping", "error", err)
	} else {
		status["database"] = "ok"
	}

	// a lost Telegram connection does not stop the service from answering once it returns
	if err = h.telegram.Ping(req.Context()); err != nil {
		status["telegram"] = "unreachable"
		h.log.WarnContext(req.Context(), "Health check degraded: Telegram API unreachable", "error", err)
	} else {
		status["telegram"] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err = json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", "error", err)
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}

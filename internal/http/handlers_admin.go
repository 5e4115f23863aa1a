package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/beaconworks/kb-chat-api/internal/apperr"
	"github.com/beaconworks/kb-chat-api/internal/ports"
)

// StatsProvider computes the admin statistics aggregate.
type StatsProvider interface {
	UserStats(ctx context.Context) (ports.UserStats, error)
}

// AdminHandlers provides HTTP handlers for the admin endpoints.
type AdminHandlers struct {
	Stats  StatsProvider
	Logger *slog.Logger
}

func (h *AdminHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// UserStats handles the admin statistics endpoint.
// GET /admin/stats.
func (h *AdminHandlers) UserStats(w http.ResponseWriter, r *http.Request) {
	if h.Stats == nil {
		WriteAppError(w, apperr.Misconfigured("statistics are not configured"))
		return
	}

	stats, err := h.Stats.UserStats(r.Context())
	if err != nil {
		h.logger().Error("stats lookup failed", slog.Any("error", err))
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}

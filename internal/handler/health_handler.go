package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/educonnect/reengage-engine/internal/db"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	database *db.DB
	cache    *redis.Client
	logger   *slog.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when the
// dedup cache is disabled.
func NewHealthHandler(database *db.DB, cache *redis.Client, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		database: database,
		cache:    cache,
		logger:   logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string),
	}

	if err := h.database.Health(ctx); err != nil {
		h.logger.Error("database health check failed", slog.String("error", err.Error()))
		response.Status = "unhealthy"
		response.Services["database"] = "unhealthy"
	} else {
		response.Services["database"] = "healthy"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx).Err(); err != nil {
			// A dead cache degrades dedup lookups but does not stop dispatch
			h.logger.Warn("dedup cache health check failed", slog.String("error", err.Error()))
			response.Services["dedup_cache"] = "unhealthy"
		} else {
			response.Services["dedup_cache"] = "healthy"
		}
	} else {
		response.Services["dedup_cache"] = "not_configured"
	}

	if response.Status == "healthy" {
		respondSuccess(w, response)
	} else {
		respondJSON(w, http.StatusServiceUnavailable, response)
	}
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/educonnect/reengage-engine/internal/engine"
)

// EngineHandler exposes the manual trigger surface: run sweeps on demand,
// start/stop the scheduler, inspect engine state.
type EngineHandler struct {
	orchestrator *engine.Orchestrator
	scheduler    *engine.Scheduler
	// baseCtx outlives any single request; scheduler starts hang off it,
	// not off the triggering request's context
	baseCtx context.Context
	logger  *slog.Logger
}

// NewEngineHandler creates a new engine handler
func NewEngineHandler(orchestrator *engine.Orchestrator, scheduler *engine.Scheduler, baseCtx context.Context, logger *slog.Logger) *EngineHandler {
	return &EngineHandler{
		orchestrator: orchestrator,
		scheduler:    scheduler,
		baseCtx:      baseCtx,
		logger:       logger,
	}
}

// TriggerResult is the structured result of a manual trigger. A guard
// violation comes back as success=false with an explanation, not as an
// HTTP error: the engine is fine, it is just busy.
type TriggerResult struct {
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`
	Summary *engine.RunSummary `json:"summary,omitempty"`
}

// StatusResponse reports the engine's run-guard and scheduler state
type StatusResponse struct {
	Running        bool `json:"running"`
	SchedulerArmed bool `json:"scheduler_armed"`
}

// RunAll handles POST /engine/run: a full unified run
func (h *EngineHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orchestrator.RunAll(r.Context())
	h.respondTrigger(w, summary, err)
}

// RunRules handles POST /engine/rules/run: the rule sweep only
func (h *EngineHandler) RunRules(w http.ResponseWriter, r *http.Request) {
	summary, err := h.orchestrator.RunRules(r.Context())
	h.respondTrigger(w, summary, err)
}

// RunCampaign handles POST /engine/campaigns/{id}/run: one campaign
func (h *EngineHandler) RunCampaign(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid campaign ID")
		return
	}

	summary, runErr := h.orchestrator.RunCampaign(r.Context(), id)
	h.respondTrigger(w, summary, runErr)
}

// StartScheduler handles POST /engine/scheduler/start
func (h *EngineHandler) StartScheduler(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Start(h.baseCtx)
	respondSuccess(w, TriggerResult{Success: true})
}

// StopScheduler handles POST /engine/scheduler/stop
func (h *EngineHandler) StopScheduler(w http.ResponseWriter, r *http.Request) {
	h.scheduler.Stop()
	respondSuccess(w, TriggerResult{Success: true})
}

// Status handles GET /engine/status
func (h *EngineHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, StatusResponse{
		Running:        h.orchestrator.Running(),
		SchedulerArmed: h.scheduler.Armed(),
	})
}

func (h *EngineHandler) respondTrigger(w http.ResponseWriter, summary *engine.RunSummary, err error) {
	if err != nil {
		if errors.Is(err, engine.ErrRunInProgress) {
			respondSuccess(w, TriggerResult{Success: false, Error: err.Error()})
			return
		}
		handleError(w, err, h.logger)
		return
	}
	respondSuccess(w, TriggerResult{Success: true, Summary: summary})
}

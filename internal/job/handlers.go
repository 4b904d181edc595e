package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/obslog"
)

// Handlers executes engine operations dispatched through Asynq.
type Handlers struct {
	engine *engine.Engine
	logger *obslog.Logger
}

// NewHandlers builds a Handlers bound to e. logger may be nil, in
// which case handler completion is not logged.
func NewHandlers(e *engine.Engine, logger *obslog.Logger) *Handlers {
	return &Handlers{engine: e, logger: logger}
}

// RegisterHandlers wires every job type onto mux.
func (h *Handlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOptimizeRun, h.HandleOptimizeRun)
	mux.HandleFunc(TypeEmergencyInsert, h.HandleEmergencyInsert)
}

// HandleOptimizeRun runs a bounded Tabu optimize over the payload's
// date range and persists the result through the engine.
func (h *Handlers) HandleOptimizeRun(ctx context.Context, t *asynq.Task) error {
	var payload OptimizeRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("job: unmarshal optimize payload: %w: %w", err, asynq.SkipRetry)
	}

	resp, err := h.engine.Optimize(ctx, engine.OptimizeRequest{
		DateRangeStart: payload.DateRangeStart,
		DateRangeEnd:   payload.DateRangeEnd,
		MaxIterations:  payload.MaxIterations,
		TabuTenure:     payload.TabuTenure,
	})
	if err != nil {
		return fmt.Errorf("job: optimize run failed: %w", err)
	}

	if h.logger != nil {
		obslog.LogOptimizeRun(h.logger, resp.Metrics.Iterations, resp.Metrics.ImprovementCount, resp.Metrics.UnplacedCount, resp.Metrics.DurationMs, resp.Cancelled)
	}
	return nil
}

// HandleEmergencyInsert runs the emergency strategy ladder for the
// payload's request and persists the result through the engine.
func (h *Handlers) HandleEmergencyInsert(ctx context.Context, t *asynq.Task) error {
	var payload EmergencyInsertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("job: unmarshal emergency payload: %w: %w", err, asynq.SkipRetry)
	}

	result, err := h.engine.InsertEmergency(ctx, payload.Request)
	if err != nil {
		return fmt.Errorf("job: emergency insert failed: %w", err)
	}

	if h.logger != nil {
		obslog.LogEmergencyInsertion(h.logger, string(result.StrategyUsed), result.Success, result.DisruptionScore)
	}
	if !result.Success {
		return fmt.Errorf("job: emergency insertion fell through to manual review: %s", result.Message)
	}
	return nil
}

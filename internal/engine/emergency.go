package engine

import (
	"context"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

// InsertEmergency runs the emergency strategy ladder for req and, on
// success, persists the resulting change. The run is scoped to the
// calendar day containing req.Arrival and bounded by
// Config.EmergencyBudget.
func (e *Engine) InsertEmergency(ctx context.Context, req emergency.Request) (emergency.Result, error) {
	release, ok := e.acquire()
	if !ok {
		return emergency.Result{}, ErrBusy
	}
	defer release()

	budgetCtx, cancel := context.WithTimeout(ctx, e.cfg.EmergencyBudget)
	defer cancel()

	dayStart := time.Date(req.Arrival.Year(), req.Arrival.Month(), req.Arrival.Day(), 0, 0, 0, 0, req.Arrival.Location())
	dateRange := repository.DateRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	snapshot, schedule, err := e.buildSnapshotAndSchedule(budgetCtx, dateRange)
	if err != nil {
		return emergency.Result{}, err
	}
	resolver, _ := e.resolverAndChecker(snapshot)

	handler := emergency.New(resolver, e.cfg.DisruptionWeights, e.cfg.BumpOptimizer)
	result, updated := handler.Insert(budgetCtx, req, snapshot, schedule)
	e.metrics.ObserveEmergencyInsertion(string(result.StrategyUsed), result.Success)

	if !result.Success {
		return result, nil
	}

	if err := e.persist(ctx, dateRange, updated, snapshot.Version); err != nil {
		return emergency.Result{}, err
	}
	return result, nil
}

package engine

import (
	"context"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

// OptimizeRequest mirrors spec.md §6's wire contract.
type OptimizeRequest struct {
	DateRangeStart time.Time
	DateRangeEnd   time.Time
	MaxIterations  *int
	TabuTenure     *int
	Weights        *optimizer.Weights
}

// Metrics reports the objective breakdown plus search statistics.
type Metrics struct {
	MakespanMinutes  float64
	TotalSDST        float64
	TotalIdle        float64
	TotalOvertime    float64
	UnplacedCount    int
	Iterations       int
	ImprovementCount int
	DurationMs       int64
}

// OptimizeResponse mirrors spec.md §6's wire contract.
type OptimizeResponse struct {
	Assignments []entity.Assignment
	Metrics     Metrics
	Message     string
	Cancelled   bool
}

// Optimize runs a bounded Tabu search over the pending surgeries in
// [DateRangeStart, DateRangeEnd) and persists the resulting
// assignments. Constraint-level outcomes (infeasible runs, timeouts)
// are returned as ordinary responses per spec.md §7; only structural
// and upstream failures are returned as errors.
func (e *Engine) Optimize(ctx context.Context, req OptimizeRequest) (OptimizeResponse, error) {
	if !req.DateRangeEnd.After(req.DateRangeStart) {
		return OptimizeResponse{}, &entity.InvalidInputError{Reason: "dateRangeEnd must be after dateRangeStart"}
	}

	release, ok := e.acquire()
	if !ok {
		return OptimizeResponse{}, ErrBusy
	}
	defer release()

	hardCtx, cancel := context.WithTimeout(ctx, e.cfg.HardTimeout)
	defer cancel()

	dateRange := repository.DateRange{Start: req.DateRangeStart, End: req.DateRangeEnd}
	snapshot, initial, err := e.buildSnapshotAndSchedule(hardCtx, dateRange)
	if err != nil {
		return OptimizeResponse{}, err
	}
	resolver, checker := e.resolverAndChecker(snapshot)

	cfg := e.cfg.DefaultTabu
	cfg.Logger = e.logger
	if req.MaxIterations != nil {
		cfg.MaxIterations = *req.MaxIterations
	}
	if req.TabuTenure != nil {
		cfg.TabuTenure = *req.TabuTenure
	}
	if req.Weights != nil {
		cfg.Weights = *req.Weights
	}

	start := time.Now()
	var result optimizer.Result
	if len(initial.Pending) == 0 {
		// spec.md §8: empty pending set returns the schedule unchanged
		// with zero iterations.
		result = optimizer.Result{Best: initial, BestCost: optimizer.Cost(initial, snapshot, cfg.Weights)}
	} else {
		result = optimizer.Run(hardCtx, initial, snapshot, resolver, checker, cfg)
	}
	duration := time.Since(start)
	e.metrics.ObserveOptimizeRun(duration.Seconds(), result.Cancelled)

	if duration > e.cfg.SoftTimeout && !result.Cancelled {
		e.logger.Infow("optimize run exceeded soft timeout", "durationMs", duration.Milliseconds(), "softTimeoutMs", e.cfg.SoftTimeout.Milliseconds())
	}

	message := ""
	if len(result.Best.Pending) > 0 && len(result.Best.Assignments) == 0 {
		message = "no feasible placement exists for any pending surgery in this run"
	}

	if !result.Cancelled {
		if err := e.persist(ctx, dateRange, result.Best, snapshot.Version); err != nil {
			return OptimizeResponse{}, err
		}
	}

	return OptimizeResponse{
		Assignments: result.Best.Assignments,
		Metrics: Metrics{
			MakespanMinutes: result.BestCost.MakespanMinutes, TotalSDST: result.BestCost.SDSTMinutes,
			TotalIdle: result.BestCost.IdleMinutes, TotalOvertime: result.BestCost.OvertimeMinutes,
			UnplacedCount: result.BestCost.UnplacedCount, Iterations: result.Iterations,
			ImprovementCount: result.ImprovementCount, DurationMs: duration.Milliseconds(),
		},
		Message:   message,
		Cancelled: result.Cancelled,
	}, nil
}

// persist writes every assignment of best as an upsert, and every
// surgery still pending in best as pending, in a single atomic change
// set.
func (e *Engine) persist(ctx context.Context, dateRange repository.DateRange, best entity.Schedule, version string) error {
	changes := repository.AssignmentChangeSet{Upserts: best.Assignments}
	for _, s := range best.Pending {
		changes.PendingSurgeryIDs = append(changes.PendingSurgeryIDs, s.ID)
	}
	if _, err := e.repo.PersistAssignments(ctx, changes, dateRange, version); err != nil {
		return err
	}
	return nil
}

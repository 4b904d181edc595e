// Package engine is the facade (spec.md §4.8/C8): it translates
// repository data into the immutable internal structures the Tabu
// optimizer and emergency handler operate on, runs requests on a
// bounded worker pool, and persists the results under optimistic
// concurrency.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
	"github.com/schedcu/surgical-scheduler/internal/repository"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// ErrBusy is returned when every worker-pool slot is in use; requests
// are not queued (spec.md §5: "reject with busy when full").
var ErrBusy = errors.New("engine: busy, worker pool exhausted")

// Logger is the structured-logging surface the engine and the
// optimizer it drives both need; internal/obslog's logger satisfies
// it.
type Logger interface {
	optimizer.Logger
	Infow(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// MetricsRecorder is the narrow metrics surface the engine emits
// through; internal/metrics implements it against Prometheus.
type MetricsRecorder interface {
	ObserveOptimizeRun(durationSeconds float64, cancelled bool)
	ObserveEmergencyInsertion(strategy string, success bool)
	SetWorkerPoolInUse(n int)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOptimizeRun(float64, bool)    {}
func (noopMetrics) ObserveEmergencyInsertion(string, bool) {}
func (noopMetrics) SetWorkerPoolInUse(int)              {}

type noopLogger struct{}

func (noopLogger) Debugw(string, ...interface{}) {}
func (noopLogger) Infow(string, ...interface{})  {}
func (noopLogger) Errorw(string, ...interface{}) {}

// Config bounds and tunes engine behavior; see spec.md §6's
// configuration surface.
type Config struct {
	WorkerPoolSize     int
	SoftTimeout        time.Duration
	HardTimeout        time.Duration
	EmergencyBudget    time.Duration
	MissingSDSTMinutes int
	DefaultWeights     optimizer.Weights
	DefaultTabu        optimizer.Config
	DisruptionWeights  emergency.DisruptionWeights
	BumpOptimizer      optimizer.Config
}

// DefaultConfig matches spec.md §5/§6's stated defaults.
func DefaultConfig() Config {
	return Config{
		WorkerPoolSize:     4,
		SoftTimeout:        30 * time.Second,
		HardTimeout:        120 * time.Second,
		EmergencyBudget:    5 * time.Second,
		MissingSDSTMinutes: 0,
		DefaultWeights:     optimizer.DefaultWeights(),
		DefaultTabu:        optimizer.DefaultConfig(),
		DisruptionWeights:  emergency.DefaultDisruptionWeights(),
		BumpOptimizer: optimizer.Config{
			MaxIterations: 30, MaxNoImprovement: 15, TabuTenure: 5,
			Weights: optimizer.DefaultWeights(), Enabled: optimizer.AllMoves(),
		},
	}
}

// Engine is the process-wide facade; construct one per repository and
// reuse it across requests.
type Engine struct {
	repo    repository.Repository
	cfg     Config
	logger  Logger
	metrics MetricsRecorder
	sem     chan struct{}
}

// Option customizes a newly built Engine.
type Option func(*Engine)

// WithLogger overrides the engine's structured logger.
func WithLogger(l Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics overrides the engine's metrics recorder.
func WithMetrics(m MetricsRecorder) Option { return func(e *Engine) { e.metrics = m } }

// New builds an Engine bound to repo.
func New(repo repository.Repository, cfg Config, opts ...Option) *Engine {
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 4
	}
	e := &Engine{
		repo:    repo,
		cfg:     cfg,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		sem:     make(chan struct{}, cfg.WorkerPoolSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// acquire claims a worker slot without blocking; callers must release
// exactly once on success.
func (e *Engine) acquire() (release func(), ok bool) {
	select {
	case e.sem <- struct{}{}:
		e.metrics.SetWorkerPoolInUse(len(e.sem))
		return func() {
			<-e.sem
			e.metrics.SetWorkerPoolInUse(len(e.sem))
		}, true
	default:
		return nil, false
	}
}

// buildSnapshotAndSchedule loads a RunSnapshot and its corresponding
// starting Schedule from the repository.
func (e *Engine) buildSnapshotAndSchedule(ctx context.Context, dateRange repository.DateRange) (entity.RunSnapshot, entity.Schedule, error) {
	pending, err := e.repo.ListPendingSurgeries(ctx, dateRange)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "listPendingSurgeries", Err: err}
	}
	roomSchedules, err := e.repo.ListRoomsWithSchedules(ctx, dateRange)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "listRoomsWithSchedules", Err: err}
	}
	matrix, err := e.repo.LoadSDSTSnapshot(ctx)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "loadSDSTSnapshot", Err: err}
	}
	rules, err := e.repo.LoadRuleSet(ctx)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "loadRuleSet", Err: err}
	}
	staff, equipment, err := e.repo.LoadStaffAndEquipment(ctx)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "loadStaffAndEquipment", Err: err}
	}
	version, err := e.repo.CurrentVersion(ctx, dateRange)
	if err != nil {
		return entity.RunSnapshot{}, entity.Schedule{}, &entity.RepositoryError{Op: "currentVersion", Err: err}
	}

	rooms := make([]entity.OperatingRoom, 0, len(roomSchedules))
	var assignments []entity.Assignment
	for _, rs := range roomSchedules {
		rooms = append(rooms, rs.Room)
		assignments = append(assignments, rs.Assignments...)
	}

	snapshot := entity.RunSnapshot{
		Surgeries: pending,
		Rooms:     rooms,
		SDST:      matrix,
		Rules:     rules,
		Staff:     staff,
		Equipment: equipment,
		Version:   version,
	}
	schedule := entity.Schedule{Assignments: assignments, Pending: pending}
	return snapshot, schedule, nil
}

func (e *Engine) resolverAndChecker(snapshot entity.RunSnapshot) (*sdst.Resolver, *feasibility.Checker) {
	resolver := sdst.New(snapshot.SDST, e.cfg.MissingSDSTMinutes)
	checker := feasibility.New(resolver, feasibility.DefaultPolicy())
	return resolver, checker
}

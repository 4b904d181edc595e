// Package job enqueues and executes long-running engine operations
// (optimize runs, emergency insertions) asynchronously via Asynq,
// backed by Redis.
package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
)

// Job types.
const (
	TypeOptimizeRun      = "optimize:run"
	TypeEmergencyInsert  = "emergency:insert"
)

// Scheduler enqueues engine operations to Asynq.
type Scheduler struct {
	client *asynq.Client
}

// NewScheduler connects to the Redis instance at redisAddr and
// verifies the connection.
func NewScheduler(redisAddr string) (*Scheduler, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("job: connect to redis: %w", err)
	}
	return &Scheduler{client: client}, nil
}

// OptimizeRunPayload is the payload for an optimize:run job.
type OptimizeRunPayload struct {
	DateRangeStart time.Time         `json:"date_range_start"`
	DateRangeEnd   time.Time         `json:"date_range_end"`
	MaxIterations  *int              `json:"max_iterations,omitempty"`
	TabuTenure     *int              `json:"tabu_tenure,omitempty"`
}

// EnqueueOptimizeRun enqueues a bounded Tabu optimize run over
// [start, end). Runs are capped at the engine's own hard timeout plus
// headroom for queueing.
func (s *Scheduler) EnqueueOptimizeRun(ctx context.Context, req OptimizeRunPayload) (*asynq.TaskInfo, error) {
	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("job: marshal optimize payload: %w", err)
	}
	task := asynq.NewTask(TypeOptimizeRun, payloadBytes)
	info, err := s.client.EnqueueContext(ctx, task, asynq.MaxRetry(1), asynq.Timeout(3*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("job: enqueue optimize run: %w", err)
	}
	return info, nil
}

// EmergencyInsertPayload is the payload for an emergency:insert job.
type EmergencyInsertPayload struct {
	Request emergency.Request `json:"request"`
}

// EnqueueEmergencyInsert enqueues an emergency insertion. Retries are
// disabled: a failed attempt must surface immediately rather than
// silently re-running the strategy ladder against a schedule that may
// have since changed.
func (s *Scheduler) EnqueueEmergencyInsert(ctx context.Context, req emergency.Request) (*asynq.TaskInfo, error) {
	payloadBytes, err := json.Marshal(EmergencyInsertPayload{Request: req})
	if err != nil {
		return nil, fmt.Errorf("job: marshal emergency payload: %w", err)
	}
	task := asynq.NewTask(TypeEmergencyInsert, payloadBytes, asynq.MaxRetry(0))
	info, err := s.client.EnqueueContext(ctx, task, asynq.Timeout(15*time.Second))
	if err != nil {
		return nil, fmt.Errorf("job: enqueue emergency insert: %w", err)
	}
	return info, nil
}

// Close releases the underlying Redis connection.
func (s *Scheduler) Close() error {
	return s.client.Close()
}

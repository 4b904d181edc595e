package job_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/job"
	"github.com/schedcu/surgical-scheduler/internal/repository"
	"github.com/schedcu/surgical-scheduler/internal/repository/memory"
)

func jobDay(hour, minute int) time.Time {
	return time.Date(2026, time.September, 1, hour, minute, 0, 0, time.UTC)
}

func TestHandleOptimizeRun_PersistsThroughEngine(t *testing.T) {
	room := entity.OperatingRoom{ID: uuid.New(), Name: "R1", Status: entity.RoomStatusActive, OpenTime: jobDay(8, 0), CloseTime: jobDay(17, 0)}
	surgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 30, Urgency: entity.Scheduled}
	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)

	store := memory.New().WithRooms(room).WithSurgeries(surgery).WithSDST(matrix)
	e := engine.New(store, engine.DefaultConfig())
	handlers := job.NewHandlers(e, nil)

	payload, err := json.Marshal(job.OptimizeRunPayload{
		DateRangeStart: jobDay(0, 0),
		DateRangeEnd:   jobDay(0, 0).AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	task := asynq.NewTask(job.TypeOptimizeRun, payload)
	require.NoError(t, handlers.HandleOptimizeRun(context.Background(), task))

	pending, err := store.ListPendingSurgeries(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	require.Empty(t, pending, "the optimized surgery should have been persisted as an assignment")
}

func TestHandleOptimizeRun_RejectsMalformedPayload(t *testing.T) {
	store := memory.New()
	e := engine.New(store, engine.DefaultConfig())
	handlers := job.NewHandlers(e, nil)

	task := asynq.NewTask(job.TypeOptimizeRun, []byte("not json"))
	err := handlers.HandleOptimizeRun(context.Background(), task)
	require.Error(t, err)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleEmergencyInsert_ReturnsErrorOnManualFallback(t *testing.T) {
	room := entity.OperatingRoom{ID: uuid.New(), Name: "R1", Status: entity.RoomStatusMaintenance, OpenTime: jobDay(8, 0), CloseTime: jobDay(17, 0)}
	store := memory.New().WithRooms(room)
	e := engine.New(store, engine.DefaultConfig())
	handlers := job.NewHandlers(e, nil)

	req := emergency.Request{
		Surgery:  entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 30},
		Priority: entity.PriorityUrgent,
		Arrival:  jobDay(9, 0),
	}
	payload, err := json.Marshal(job.EmergencyInsertPayload{Request: req})
	require.NoError(t, err)

	task := asynq.NewTask(job.TypeEmergencyInsert, payload)
	err = handlers.HandleEmergencyInsert(context.Background(), task)
	require.Error(t, err, "a room in maintenance leaves no feasible placement, so the handler reports the manual fallback as a failure")
}

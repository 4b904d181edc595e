package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository"
	"github.com/schedcu/surgical-scheduler/internal/repository/memory"
)

func engineDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

// Scenario C (spec.md §8): two surgeries sharing a surgeon must land
// in different rooms rather than overlapping.
func TestEngine_Optimize_SurgeonConflictForcesRoomSplit(t *testing.T) {
	surgeon := uuid.New()
	typeID := uuid.New()
	roomA := entity.OperatingRoom{ID: uuid.New(), Name: "R1", Status: entity.RoomStatusActive, OpenTime: engineDay(8, 0), CloseTime: engineDay(17, 0)}
	roomB := entity.OperatingRoom{ID: uuid.New(), Name: "R2", Status: entity.RoomStatusActive, OpenTime: engineDay(8, 0), CloseTime: engineDay(17, 0)}

	s1 := entity.Surgery{ID: uuid.New(), SurgeryTypeID: typeID, DurationMinutes: 60, Urgency: entity.Scheduled, RequiredSurgeonID: &surgeon}
	s2 := entity.Surgery{ID: uuid.New(), SurgeryTypeID: typeID, DurationMinutes: 60, Urgency: entity.Scheduled, RequiredSurgeonID: &surgeon}

	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)

	store := memory.New().WithRooms(roomA, roomB).WithSurgeries(s1, s2).WithSDST(matrix)

	cfg := engine.DefaultConfig()
	cfg.DefaultTabu.MaxIterations = 50
	e := engine.New(store, cfg)

	resp, err := e.Optimize(context.Background(), engine.OptimizeRequest{
		DateRangeStart: engineDay(0, 0),
		DateRangeEnd:   engineDay(0, 0).AddDate(0, 0, 1),
	})
	require.NoError(t, err)
	require.False(t, resp.Cancelled)
	require.Len(t, resp.Assignments, 2)

	var first, second *entity.Assignment
	for i := range resp.Assignments {
		a := resp.Assignments[i]
		if a.SurgeryID == s1.ID {
			first = &resp.Assignments[i]
		} else {
			second = &resp.Assignments[i]
		}
	}
	require.NotNil(t, first)
	require.NotNil(t, second)
	require.NotEqual(t, first.RoomID, second.RoomID, "surgeries sharing a surgeon must not land in the same room at overlapping times")
	require.False(t, entity.Overlaps(first.OperationStart, first.End, second.OperationStart, second.End))
}

// blockingRepo wraps a memory.Store but blocks inside
// ListPendingSurgeries until release is closed, so a test can hold a
// worker-pool slot open while issuing a second concurrent request.
type blockingRepo struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingRepo) ListPendingSurgeries(ctx context.Context, r repository.DateRange) ([]entity.Surgery, error) {
	close(b.entered)
	<-b.release
	return b.Store.ListPendingSurgeries(ctx, r)
}

// A busy worker pool rejects additional requests rather than queuing
// unboundedly (spec.md §5).
func TestEngine_Optimize_RejectsWhenPoolExhausted(t *testing.T) {
	repo := &blockingRepo{Store: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	cfg := engine.DefaultConfig()
	cfg.WorkerPoolSize = 1
	e := engine.New(repo, cfg)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Optimize(context.Background(), engine.OptimizeRequest{
			DateRangeStart: engineDay(0, 0),
			DateRangeEnd:   engineDay(0, 0).AddDate(0, 0, 1),
		})
	}()

	select {
	case <-repo.entered:
	case <-time.After(time.Second):
		t.Fatal("first request never reached the repository")
	}

	_, err := e.Optimize(context.Background(), engine.OptimizeRequest{
		DateRangeStart: engineDay(0, 0),
		DateRangeEnd:   engineDay(0, 0).AddDate(0, 0, 1),
	})
	require.ErrorIs(t, err, engine.ErrBusy)

	close(repo.release)
	<-done
}

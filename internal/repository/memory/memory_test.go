package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository"
	"github.com/schedcu/surgical-scheduler/internal/repository/memory"
)

func memDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 10, hour, minute, 0, 0, time.UTC)
}

func TestListPendingSurgeries_ExcludesAssigned(t *testing.T) {
	roomID := uuid.New()
	pending := entity.Surgery{ID: uuid.New(), DurationMinutes: 30}
	assigned := entity.Surgery{ID: uuid.New(), DurationMinutes: 30}
	store := memory.New().
		WithSurgeries(pending, assigned).
		WithAssignments(entity.Assignment{SurgeryID: assigned.ID, RoomID: roomID, SetupStart: memDay(8, 0), OperationStart: memDay(8, 0), End: memDay(8, 30)})

	out, err := store.ListPendingSurgeries(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, pending.ID, out[0].ID)
}

func TestListRoomsWithSchedules_SortsAssignmentsBySetupStart(t *testing.T) {
	room := entity.OperatingRoom{ID: uuid.New(), Name: "R1", Status: entity.RoomStatusActive}
	later := entity.Assignment{SurgeryID: uuid.New(), RoomID: room.ID, SetupStart: memDay(10, 0), OperationStart: memDay(10, 0), End: memDay(10, 30)}
	earlier := entity.Assignment{SurgeryID: uuid.New(), RoomID: room.ID, SetupStart: memDay(8, 0), OperationStart: memDay(8, 0), End: memDay(8, 30)}
	store := memory.New().WithRooms(room).WithAssignments(later, earlier)

	out, err := store.ListRoomsWithSchedules(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Assignments, 2)
	require.Equal(t, earlier.SurgeryID, out[0].Assignments[0].SurgeryID)
	require.Equal(t, later.SurgeryID, out[0].Assignments[1].SurgeryID)
}

func TestPersistAssignments_ConflictOnStaleVersion(t *testing.T) {
	store := memory.New()
	current, err := store.CurrentVersion(context.Background(), repository.DateRange{})
	require.NoError(t, err)

	_, err = store.PersistAssignments(context.Background(), repository.AssignmentChangeSet{}, repository.DateRange{}, "stale-does-not-match")
	require.Error(t, err)
	require.NotEqual(t, current, "stale-does-not-match")

	var conflict *entity.ConflictError
	require.ErrorAs(t, err, &conflict)
}

func TestPersistAssignments_SucceedsWithCurrentVersionAndBumpsIt(t *testing.T) {
	store := memory.New()
	surgery := entity.Surgery{ID: uuid.New(), DurationMinutes: 45}
	room := entity.OperatingRoom{ID: uuid.New(), Name: "R1"}
	store.WithSurgeries(surgery).WithRooms(room)

	before, err := store.CurrentVersion(context.Background(), repository.DateRange{})
	require.NoError(t, err)

	assignment := entity.Assignment{SurgeryID: surgery.ID, RoomID: room.ID, SetupStart: memDay(9, 0), OperationStart: memDay(9, 0), End: memDay(9, 45)}
	after, err := store.PersistAssignments(context.Background(), repository.AssignmentChangeSet{Upserts: []entity.Assignment{assignment}}, repository.DateRange{}, before)
	require.NoError(t, err)
	require.NotEqual(t, before, after)

	pending, err := store.ListPendingSurgeries(context.Background(), repository.DateRange{})
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestPersistAssignments_EmptyVersionSkipsConflictCheck(t *testing.T) {
	store := memory.New()
	_, err := store.PersistAssignments(context.Background(), repository.AssignmentChangeSet{}, repository.DateRange{}, "")
	require.NoError(t, err)
}

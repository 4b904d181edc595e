package entity_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
)

func entityDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

func TestAssignment_RecomputeDerivesOperationStartAndEnd(t *testing.T) {
	a := entity.Assignment{SetupStart: entityDay(8, 0), AppliedSetupMinutes: 15}
	a = a.Recompute(45)
	require.Equal(t, entityDay(8, 15), a.OperationStart)
	require.Equal(t, entityDay(9, 0), a.End)
}

func TestSchedule_WithAssignmentReplacesPriorAndClearsPending(t *testing.T) {
	surgeryID := uuid.New()
	schedule := entity.Schedule{Pending: []entity.Surgery{{ID: surgeryID}}}

	placed := entity.Assignment{SurgeryID: surgeryID, RoomID: uuid.New(), SetupStart: entityDay(8, 0), End: entityDay(9, 0)}
	schedule = schedule.WithAssignment(placed)

	require.Empty(t, schedule.Pending)
	require.Len(t, schedule.Assignments, 1)

	moved := entity.Assignment{SurgeryID: surgeryID, RoomID: uuid.New(), SetupStart: entityDay(10, 0), End: entityDay(11, 0)}
	schedule = schedule.WithAssignment(moved)
	require.Len(t, schedule.Assignments, 1)
	require.Equal(t, moved.RoomID, schedule.Assignments[0].RoomID)
}

func TestSchedule_WithPendingIsIdempotent(t *testing.T) {
	surgery := entity.Surgery{ID: uuid.New()}
	schedule := entity.Schedule{}.WithPending(surgery).WithPending(surgery)
	require.Len(t, schedule.Pending, 1)
}

func TestOperatingRoom_IsAvailableDuring_RejectsMaintenanceOverlap(t *testing.T) {
	room := entity.OperatingRoom{
		Status:      entity.RoomStatusActive,
		Maintenance: []entity.TimeWindow{{Start: entityDay(9, 0), End: entityDay(10, 0)}},
	}
	require.False(t, room.IsAvailableDuring(entityDay(9, 30), entityDay(10, 30)))
	require.True(t, room.IsAvailableDuring(entityDay(10, 0), entityDay(11, 0)))
}

func TestOperatingRoom_IsAvailableDuring_RejectsNonActiveStatus(t *testing.T) {
	room := entity.OperatingRoom{Status: entity.RoomStatusMaintenance}
	require.False(t, room.IsAvailableDuring(entityDay(8, 0), entityDay(9, 0)))
}

func TestOperatingRoom_WithinHours(t *testing.T) {
	room := entity.OperatingRoom{OpenTime: entityDay(7, 0), CloseTime: entityDay(17, 0)}
	require.True(t, room.WithinHours(entityDay(8, 0), entityDay(9, 0)))
	require.False(t, room.WithinHours(entityDay(16, 0), entityDay(18, 0)))
}

func TestNewSDSTMatrix_RejectsNegativeMinutes(t *testing.T) {
	_, err := entity.NewSDSTMatrix(map[entity.SDSTKey]int{
		{From: uuid.New(), To: uuid.New()}: -5,
	})
	require.Error(t, err)
}

func TestNewSDSTMatrix_LookupRoundTrips(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	matrix, err := entity.NewSDSTMatrix(map[entity.SDSTKey]int{{From: from, To: to}: 25})
	require.NoError(t, err)

	minutes, ok := matrix.Lookup(from, to)
	require.True(t, ok)
	require.Equal(t, 25, minutes)

	_, ok = matrix.Lookup(to, from)
	require.False(t, ok)
}

func TestOverlaps(t *testing.T) {
	require.True(t, entity.Overlaps(entityDay(8, 0), entityDay(9, 0), entityDay(8, 30), entityDay(9, 30)))
	require.False(t, entity.Overlaps(entityDay(8, 0), entityDay(9, 0), entityDay(9, 0), entityDay(10, 0)))
}

package scheduling_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/scheduling"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

func testDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

// Scenario A (spec.md §8): a single room, two surgeries of different
// types — the initial solution should place both, applying SDST
// between them.
func TestInitialSolution_SingleRoomSDSTSequencing(t *testing.T) {
	typeA, typeB := uuid.New(), uuid.New()
	room := entity.OperatingRoom{ID: uuid.New(), Status: entity.RoomStatusActive, OpenTime: testDay(7, 0), CloseTime: testDay(17, 0)}

	first := entity.Surgery{ID: uuid.New(), SurgeryTypeID: typeA, DurationMinutes: 60, Urgency: entity.Scheduled, ArrivalTime: ptrTime(testDay(6, 0))}
	second := entity.Surgery{ID: uuid.New(), SurgeryTypeID: typeB, DurationMinutes: 45, Urgency: entity.Scheduled, ArrivalTime: ptrTime(testDay(6, 30))}

	matrix, err := entity.NewSDSTMatrix(map[entity.SDSTKey]int{
		{From: entity.NoneSurgeryTypeID, To: typeA}: 15,
		{From: typeA, To: typeB}:                    20,
	})
	require.NoError(t, err)
	resolver := sdst.New(matrix, 30)
	checker := feasibility.New(resolver, feasibility.DefaultPolicy())

	snapshot := entity.RunSnapshot{Surgeries: []entity.Surgery{first, second}, Rooms: []entity.OperatingRoom{room}}

	schedule := scheduling.InitialSolution([]entity.Surgery{first, second}, []entity.OperatingRoom{room}, snapshot, resolver, checker)

	require.Empty(t, schedule.Pending)
	require.Len(t, schedule.Assignments, 2)

	a1, ok := schedule.Find(first.ID)
	require.True(t, ok)
	require.Equal(t, testDay(7, 0), a1.SetupStart)
	require.Equal(t, 15, a1.AppliedSetupMinutes)

	a2, ok := schedule.Find(second.ID)
	require.True(t, ok)
	require.True(t, !a2.SetupStart.Before(a1.End))
	require.Equal(t, 20, a2.AppliedSetupMinutes)
}

func ptrTime(t time.Time) *time.Time { return &t }

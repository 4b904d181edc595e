package optimizer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

func day(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

func newRoom(id entity.RoomID) entity.OperatingRoom {
	return entity.OperatingRoom{ID: id, Name: "OR", Status: entity.RoomStatusActive, OpenTime: day(7, 0), CloseTime: day(17, 0)}
}

func newSurgery(typeID entity.SurgeryTypeID, duration int, urgency entity.Urgency) entity.Surgery {
	return entity.Surgery{ID: uuid.New(), SurgeryTypeID: typeID, DurationMinutes: duration, Urgency: urgency, Status: entity.SurgeryStatusPending}
}

// Scenario B (spec.md §8): reordering two surgeries of different
// types changes the total SDST incurred, so the optimizer should be
// able to find the lower-cost ordering from a worse starting point.
func TestRun_FindsLowerSDSTOrdering(t *testing.T) {
	typeA, typeB := uuid.New(), uuid.New()
	room := newRoom(uuid.New())

	surgeryA := newSurgery(typeA, 60, entity.Scheduled)
	surgeryB := newSurgery(typeB, 60, entity.Scheduled)

	matrix, err := entity.NewSDSTMatrix(map[entity.SDSTKey]int{
		{From: entity.NoneSurgeryTypeID, To: typeA}: 10,
		{From: entity.NoneSurgeryTypeID, To: typeB}: 40,
		{From: typeA, To: typeB}:                    5,
		{From: typeB, To: typeA}:                    45,
	})
	require.NoError(t, err)

	resolver := sdst.New(matrix, 30)
	checker := feasibility.New(resolver, feasibility.DefaultPolicy())

	snapshot := entity.RunSnapshot{
		Surgeries: []entity.Surgery{surgeryA, surgeryB},
		Rooms:     []entity.OperatingRoom{room},
	}

	// Deliberately start with the worse ordering: B then A costs 40+45=85
	// minutes of setup, vs A then B's 10+5=15.
	worseSchedule := entity.Schedule{Assignments: []entity.Assignment{
		{
			SurgeryID: surgeryB.ID, RoomID: room.ID, SurgeryTypeID: typeB,
			SetupStart: day(7, 0), AppliedSetupMinutes: 40,
			OperationStart: day(7, 40), End: day(8, 40),
		},
		{
			SurgeryID: surgeryA.ID, RoomID: room.ID, SurgeryTypeID: typeA,
			SetupStart: day(8, 40), AppliedSetupMinutes: 45,
			OperationStart: day(9, 25), End: day(10, 25),
		},
	}}

	startCost := optimizer.Cost(worseSchedule, snapshot, optimizer.DefaultWeights())

	cfg := optimizer.DefaultConfig()
	cfg.MaxIterations = 50
	cfg.MaxNoImprovement = 20

	result := optimizer.Run(context.Background(), worseSchedule, snapshot, resolver, checker, cfg)

	require.LessOrEqual(t, result.BestCost.Total, startCost.Total)
	require.Empty(t, result.Best.Pending)
	require.LessOrEqual(t, result.BestCost.SDSTMinutes, startCost.SDSTMinutes)
}

// Scenario A/E shape: an unplaceable surgery (duration exceeds the
// room's entire day) stays Pending and the search terminates cleanly
// without ever claiming it was placed.
func TestRun_LeavesUnplaceableSurgeryPending(t *testing.T) {
	typeA := uuid.New()
	room := newRoom(uuid.New())
	tooLong := newSurgery(typeA, 20*60, entity.Urgent)

	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)
	resolver := sdst.New(matrix, 15)
	checker := feasibility.New(resolver, feasibility.DefaultPolicy())

	snapshot := entity.RunSnapshot{
		Surgeries: []entity.Surgery{tooLong},
		Rooms:     []entity.OperatingRoom{room},
	}

	initial := entity.Schedule{Pending: []entity.Surgery{tooLong}}

	cfg := optimizer.DefaultConfig()
	cfg.MaxIterations = 20
	cfg.MaxNoImprovement = 10

	result := optimizer.Run(context.Background(), initial, snapshot, resolver, checker, cfg)

	require.Len(t, result.Best.Pending, 1)
	require.Equal(t, tooLong.ID, result.Best.Pending[0].ID)
}

// A cancelled context returns the best-so-far schedule instead of
// blocking to natural termination (spec.md §4.4's cancellation
// requirement).
func TestRun_CancelledContextReturnsBestSoFar(t *testing.T) {
	typeA := uuid.New()
	room := newRoom(uuid.New())
	surgery := newSurgery(typeA, 30, entity.Scheduled)

	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)
	resolver := sdst.New(matrix, 10)
	checker := feasibility.New(resolver, feasibility.DefaultPolicy())

	snapshot := entity.RunSnapshot{Surgeries: []entity.Surgery{surgery}, Rooms: []entity.OperatingRoom{room}}
	initial := entity.Schedule{Pending: []entity.Surgery{surgery}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := optimizer.DefaultConfig()
	result := optimizer.Run(ctx, initial, snapshot, resolver, checker, cfg)

	require.True(t, result.Cancelled)
	require.Equal(t, 0, result.Iterations)
}

package optimizer_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
)

func TestCost_MakespanSpansAllRoomsGlobally(t *testing.T) {
	typeA := uuid.New()
	roomEarly := newRoom(uuid.New())
	roomLate := entity.OperatingRoom{ID: uuid.New(), Name: "OR2", Status: entity.RoomStatusActive, OpenTime: day(9, 0), CloseTime: day(19, 0)}

	surgeryA := newSurgery(typeA, 60, entity.Scheduled)
	surgeryB := newSurgery(typeA, 60, entity.Scheduled)

	snapshot := entity.RunSnapshot{
		Surgeries: []entity.Surgery{surgeryA, surgeryB},
		Rooms:     []entity.OperatingRoom{roomEarly, roomLate},
	}

	schedule := entity.Schedule{Assignments: []entity.Assignment{
		{SurgeryID: surgeryA.ID, RoomID: roomEarly.ID, SetupStart: day(7, 0), OperationStart: day(7, 0), End: day(8, 0)},
		{SurgeryID: surgeryB.ID, RoomID: roomLate.ID, SetupStart: day(9, 0), OperationStart: day(9, 0), End: day(11, 0)},
	}}

	b := optimizer.Cost(schedule, snapshot, optimizer.DefaultWeights())

	// Global span is day(7,0) to day(11,0): 4 hours, not either room's
	// own lastEnd-openTime figure.
	require.Equal(t, 240.0, b.MakespanMinutes)
}

func TestCost_PriorityPenaltyWeighsWaitOnPlacedAssignments(t *testing.T) {
	typeA := uuid.New()
	room := newRoom(uuid.New())
	arrival := day(6, 0)

	urgent := newSurgery(typeA, 60, entity.Urgent)
	urgent.ArrivalTime = &arrival

	snapshot := entity.RunSnapshot{
		Surgeries: []entity.Surgery{urgent},
		Rooms:     []entity.OperatingRoom{room},
	}

	// Operated on at 8:00, two hours after arrival at 6:00.
	schedule := entity.Schedule{Assignments: []entity.Assignment{
		{SurgeryID: urgent.ID, RoomID: room.ID, SetupStart: day(7, 45), OperationStart: day(8, 0), End: day(9, 0)},
	}}

	b := optimizer.Cost(schedule, snapshot, optimizer.DefaultWeights())

	// urgencyWeight(Urgent) == 3, wait == 120 minutes.
	require.Equal(t, 360.0, b.PriorityPenalty)
}

func TestCost_UnplacedPenaltyWeighsByUrgency(t *testing.T) {
	room := newRoom(uuid.New())
	snapshot := entity.RunSnapshot{Rooms: []entity.OperatingRoom{room}}

	routine := newSurgery(uuid.New(), 60, entity.Scheduled)
	immediate := newSurgery(uuid.New(), 60, entity.Immediate)

	schedule := entity.Schedule{Pending: []entity.Surgery{routine, immediate}}

	b := optimizer.Cost(schedule, snapshot, optimizer.DefaultWeights())

	require.Equal(t, 2, b.UnplacedCount)
	// urgencyWeight(Scheduled)==1, urgencyWeight(Immediate)==4.
	require.Equal(t, 5.0, b.UnplacedPenalty)
}

package feasibility_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

func checkDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

func emptyResolver() *sdst.Resolver {
	matrix, err := entity.NewSDSTMatrix(nil)
	if err != nil {
		panic(err)
	}
	return sdst.New(matrix, 0)
}

func activeRoom(id entity.RoomID) entity.OperatingRoom {
	return entity.OperatingRoom{ID: id, Name: "OR1", Status: entity.RoomStatusActive, OpenTime: checkDay(7, 0), CloseTime: checkDay(17, 0)}
}

func TestCheck_FeasiblePlacementHasNoViolations(t *testing.T) {
	room := activeRoom(uuid.New())
	surgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 60, Status: entity.SurgeryStatusPending}

	c := feasibility.New(emptyResolver(), feasibility.DefaultPolicy())
	placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: checkDay(8, 0)}

	verdict := c.Check(placement, entity.RunSnapshot{Rooms: []entity.OperatingRoom{room}}, entity.Schedule{}, false)
	require.True(t, verdict.Feasible)
	require.Empty(t, verdict.Violations)
}

func TestCheck_OutsideRoomHoursIsCritical(t *testing.T) {
	room := activeRoom(uuid.New())
	surgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 60}

	c := feasibility.New(emptyResolver(), feasibility.DefaultPolicy())
	placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: checkDay(18, 0)}

	verdict := c.Check(placement, entity.RunSnapshot{Rooms: []entity.OperatingRoom{room}}, entity.Schedule{}, false)
	require.False(t, verdict.Feasible)
	require.Contains(t, violationKinds(verdict), entity.ViolationRoomHours)
}

func TestCheck_OverlappingRoomAssignmentIsCritical(t *testing.T) {
	room := activeRoom(uuid.New())
	existingType := uuid.New()
	existing := entity.Assignment{
		SurgeryID: uuid.New(), RoomID: room.ID, SurgeryTypeID: existingType,
		SetupStart: checkDay(8, 0), OperationStart: checkDay(8, 0), End: checkDay(9, 0),
	}
	schedule := entity.Schedule{Assignments: []entity.Assignment{existing}}

	surgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 30}
	placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: checkDay(8, 30)}

	c := feasibility.New(emptyResolver(), feasibility.DefaultPolicy())
	verdict := c.Check(placement, entity.RunSnapshot{Rooms: []entity.OperatingRoom{room}}, schedule, false)
	require.False(t, verdict.Feasible)
	require.Contains(t, violationKinds(verdict), entity.ViolationRoomAvailability)
}

func TestCheck_SameSurgeonDoubleBookedIsCritical(t *testing.T) {
	surgeonID := uuid.New()
	roomA, roomB := activeRoom(uuid.New()), activeRoom(uuid.New())

	existing := entity.Assignment{
		SurgeryID: uuid.New(), RoomID: roomA.ID, SurgeryTypeID: uuid.New(),
		SetupStart: checkDay(8, 0), OperationStart: checkDay(8, 0), End: checkDay(9, 0),
		SurgeonID: &surgeonID,
	}
	schedule := entity.Schedule{Assignments: []entity.Assignment{existing}}

	surgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 60, RequiredSurgeonID: &surgeonID}
	placement := feasibility.Placement{Surgery: surgery, Room: roomB, SetupStart: checkDay(8, 30)}

	c := feasibility.New(emptyResolver(), feasibility.DefaultPolicy())
	snapshot := entity.RunSnapshot{Rooms: []entity.OperatingRoom{roomA, roomB}}
	verdict := c.Check(placement, snapshot, schedule, false)
	require.False(t, verdict.Feasible)
	require.Contains(t, violationKinds(verdict), entity.ViolationSurgeonAvailability)
}

func TestCheckSchedule_AggregatesPerSurgeryVerdicts(t *testing.T) {
	room := activeRoom(uuid.New())
	a := entity.Assignment{
		SurgeryID: uuid.New(), RoomID: room.ID, SurgeryTypeID: uuid.New(),
		SetupStart: checkDay(8, 0), OperationStart: checkDay(8, 0), End: checkDay(9, 0),
	}
	schedule := entity.Schedule{Assignments: []entity.Assignment{a}}
	snapshot := entity.RunSnapshot{
		Rooms:     []entity.OperatingRoom{room},
		Surgeries: []entity.Surgery{{ID: a.SurgeryID, SurgeryTypeID: a.SurgeryTypeID, DurationMinutes: 60}},
	}

	c := feasibility.New(emptyResolver(), feasibility.DefaultPolicy())
	report := c.CheckSchedule(schedule, checkDay(0, 0), snapshot)
	require.True(t, report.Feasible)
	require.Contains(t, report.PerSurgery, a.SurgeryID)
}

func violationKinds(v feasibility.Verdict) []entity.ViolationKind {
	kinds := make([]entity.ViolationKind, 0, len(v.Violations))
	for _, viol := range v.Violations {
		kinds = append(kinds, viol.Kind)
	}
	return kinds
}

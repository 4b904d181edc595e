package emergency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

func emergencyDay(hour, minute int) time.Time {
	return time.Date(2026, time.August, 3, hour, minute, 0, 0, time.UTC)
}

// Scenario D (spec.md §8): an Urgent emergency arrives while a Low
// (Scheduled-tier) surgery occupies the only available room; bumping
// must free a slot within maxWait(Urgent)=60 minutes.
func TestInsert_BumpsLowerPrioritySurgery(t *testing.T) {
	roomID := uuid.New()
	room := entity.OperatingRoom{ID: roomID, Status: entity.RoomStatusActive, OpenTime: emergencyDay(8, 0), CloseTime: emergencyDay(17, 0)}

	lowPriorityType := uuid.New()
	emergencyType := uuid.New()

	lowSurgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: lowPriorityType, DurationMinutes: 120, Urgency: entity.Scheduled}
	existing := entity.Assignment{
		SurgeryID: lowSurgery.ID, RoomID: roomID, SurgeryTypeID: lowPriorityType,
		SetupStart: emergencyDay(8, 0), OperationStart: emergencyDay(8, 0), End: emergencyDay(10, 0),
	}

	emergencySurgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: emergencyType, DurationMinutes: 60}

	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)
	resolver := sdst.New(matrix, 0)

	snapshot := entity.RunSnapshot{
		Surgeries: []entity.Surgery{lowSurgery},
		Rooms:     []entity.OperatingRoom{room},
	}
	schedule := entity.Schedule{Assignments: []entity.Assignment{existing}}

	bumpConfig := optimizer.DefaultConfig()
	bumpConfig.MaxIterations = 20
	bumpConfig.MaxNoImprovement = 10

	handler := emergency.New(resolver, emergency.DefaultDisruptionWeights(), bumpConfig)

	req := emergency.Request{
		Surgery:      emergencySurgery,
		Priority:     entity.PriorityUrgent,
		Arrival:      emergencyDay(8, 10),
		AllowBumping: true,
	}

	result, updated := handler.Insert(context.Background(), req, snapshot, schedule)

	require.True(t, result.Success)
	require.Equal(t, entity.StrategyBump, result.StrategyUsed)
	require.LessOrEqual(t, result.WaitMinutes, emergency.MaxWait(entity.PriorityUrgent).Minutes())
	require.Contains(t, result.BumpedSurgeryIDs, lowSurgery.ID)

	emergencyAssignment, ok := updated.Find(emergencySurgery.ID)
	require.True(t, ok)
	require.Equal(t, roomID, emergencyAssignment.RoomID)
}

// A request that cannot be satisfied by any strategy falls through to
// manual review rather than being silently dropped (spec.md §4.5 step 5).
func TestInsert_FallsBackToManualReview(t *testing.T) {
	roomID := uuid.New()
	room := entity.OperatingRoom{ID: roomID, Status: entity.RoomStatusMaintenance, OpenTime: emergencyDay(8, 0), CloseTime: emergencyDay(17, 0)}

	emergencySurgery := entity.Surgery{ID: uuid.New(), SurgeryTypeID: uuid.New(), DurationMinutes: 60}

	matrix, err := entity.NewSDSTMatrix(nil)
	require.NoError(t, err)
	resolver := sdst.New(matrix, 0)

	snapshot := entity.RunSnapshot{Rooms: []entity.OperatingRoom{room}}
	schedule := entity.Schedule{}

	handler := emergency.New(resolver, emergency.DefaultDisruptionWeights(), optimizer.DefaultConfig())

	req := emergency.Request{Surgery: emergencySurgery, Priority: entity.PriorityImmediate, Arrival: emergencyDay(8, 0)}

	result, updated := handler.Insert(context.Background(), req, snapshot, schedule)

	require.False(t, result.Success)
	require.Equal(t, entity.StrategyManual, result.StrategyUsed)
	require.NotEmpty(t, result.Message)
	require.Equal(t, schedule, updated)
}

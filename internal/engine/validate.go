package engine

import (
	"context"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

// ValidateSchedule evaluates every assignment scheduled on date
// against the current resource catalogs and rule set, without
// mutating anything.
func (e *Engine) ValidateSchedule(ctx context.Context, date time.Time) (feasibility.ScheduleReport, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dateRange := repository.DateRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	snapshot, schedule, err := e.buildSnapshotAndSchedule(ctx, dateRange)
	if err != nil {
		return feasibility.ScheduleReport{}, err
	}
	_, checker := e.resolverAndChecker(snapshot)
	return checker.CheckSchedule(schedule, dayStart, snapshot), nil
}

// FeasibilityRequest mirrors spec.md §6's wire contract: a
// hypothetical placement of surgeryID in roomID starting at
// startTime, which need not already exist in the schedule.
type FeasibilityRequest struct {
	SurgeryID entity.SurgeryID
	RoomID    entity.RoomID
	StartTime time.Time
	EndTime   time.Time
}

// CheckFeasibility evaluates a single hypothetical placement without
// requiring it to already exist in the schedule (spec.md §6's
// FeasibilityRequest/Response contract).
func (e *Engine) CheckFeasibility(ctx context.Context, req FeasibilityRequest) (feasibility.Verdict, error) {
	dayStart := time.Date(req.StartTime.Year(), req.StartTime.Month(), req.StartTime.Day(), 0, 0, 0, 0, req.StartTime.Location())
	dateRange := repository.DateRange{Start: dayStart, End: dayStart.AddDate(0, 0, 1)}

	snapshot, schedule, err := e.buildSnapshotAndSchedule(ctx, dateRange)
	if err != nil {
		return feasibility.Verdict{}, err
	}

	surgery, ok := snapshot.SurgeryByID(req.SurgeryID)
	if !ok {
		return feasibility.Verdict{}, &entity.InvalidInputError{Reason: "unknown surgeryId"}
	}
	room, ok := snapshot.RoomByID(req.RoomID)
	if !ok {
		return feasibility.Verdict{}, &entity.InvalidInputError{Reason: "unknown roomId"}
	}

	_, checker := e.resolverAndChecker(snapshot)
	placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: req.StartTime}
	return checker.Check(placement, snapshot, schedule, false), nil
}

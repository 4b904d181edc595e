package scheduling

import (
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// jumpStep bounds how finely NextAvailable probes forward when no
// interval-jump target is available; kept small since real jumps come
// from conflicting assignment boundaries, not from this step.
const jumpStep = time.Minute

// NextAvailable computes the earliest feasible setup start for surgery
// in room, given the rest of schedule. It returns the setup start,
// the applied setup minutes, and whether a within-day placement was
// found at all (spec.md §4.3).
//
// The search starts at max(lastAssignmentEnd, room.OpenTime) and
// advances past surgeon, equipment and room-occupancy conflicts by
// jumping to the earliest end among the conflicting assignments rather
// than stepping minute by minute. Any other infeasibility, staff
// availability included, supplies no jump target and advances the
// candidate by jumpStep.
func NextAvailable(room entity.OperatingRoom, surgery entity.Surgery, snapshot entity.RunSnapshot, schedule entity.Schedule, resolver *sdst.Resolver, checker *feasibility.Checker) (time.Time, int, bool) {
	roomAssignments := schedule.InRoom(room.ID)

	var last entity.Assignment
	hasLast := false
	if n := len(roomAssignments); n > 0 {
		last = roomAssignments[n-1]
		hasLast = true
	}

	candidate := room.OpenTime
	if hasLast && last.End.After(candidate) {
		candidate = last.End
	}

	fromType := entity.NoneSurgeryTypeID
	if hasLast {
		fromType = last.SurgeryTypeID
	}
	appliedSetup := resolver.Minutes(fromType, surgery.SurgeryTypeID)

	// Overtime policy may permit placements past close; give the search
	// a generous but bounded horizon so an overtime-tolerant checker
	// still gets a chance to accept a late placement.
	horizon := room.CloseTime.Add(12 * time.Hour)

	for iterations := 0; candidate.Before(horizon); iterations++ {
		if iterations > 10000 {
			break
		}
		placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: candidate}
		verdict := checker.Check(placement, snapshot, schedule, true)
		if verdict.Feasible {
			return candidate, appliedSetup, true
		}

		next, advanced := nextJumpTarget(placement, candidate, appliedSetup, surgery, schedule, snapshot)
		if !advanced || !next.After(candidate) {
			next = candidate.Add(jumpStep)
		}
		candidate = next
	}
	return time.Time{}, 0, false
}

// nextJumpTarget looks at the surgeon, equipment and same-room
// assignments a placement at candidate would overlap and returns the
// earliest end among them, so the search can jump directly past a
// busy interval instead of stepping through it minute by minute. Staff
// conflicts are not examined.
func nextJumpTarget(p feasibility.Placement, candidate time.Time, appliedSetup int, surgery entity.Surgery, schedule entity.Schedule, snapshot entity.RunSnapshot) (time.Time, bool) {
	operationStart := candidate.Add(time.Duration(appliedSetup) * time.Minute)
	end := operationStart.Add(time.Duration(surgery.DurationMinutes) * time.Minute)

	var targets []time.Time

	if surgery.RequiredSurgeonID != nil {
		for _, a := range schedule.Assignments {
			if a.SurgeonID == nil || *a.SurgeonID != *surgery.RequiredSurgeonID {
				continue
			}
			if entity.Overlaps(operationStart, end, a.OperationStart, a.End) {
				targets = append(targets, a.End)
			}
		}
	}

	for _, eqID := range surgery.RequiredEquipment {
		for _, a := range schedule.Assignments {
			if !assignmentUsesEquipment(a, eqID) {
				continue
			}
			if entity.Overlaps(candidate, end, a.SetupStart, a.End) {
				targets = append(targets, a.End)
			}
		}
	}

	for _, a := range schedule.InRoom(p.Room.ID) {
		if entity.Overlaps(candidate, end, a.SetupStart, a.End) {
			targets = append(targets, a.End)
		}
	}

	if len(targets) == 0 {
		return time.Time{}, false
	}
	earliest := targets[0]
	for _, t := range targets[1:] {
		if t.Before(earliest) {
			earliest = t
		}
	}
	return earliest, true
}

func assignmentUsesEquipment(a entity.Assignment, eqID entity.EquipmentID) bool {
	for _, e := range a.RequiredEquipment {
		if e == eqID {
			return true
		}
	}
	return false
}


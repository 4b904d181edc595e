package optimizer

import (
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
)

// Weights holds the cost function's per-term weights (spec.md §4.6):
// makespan, idle, overtime, SDST, priority (urgency-weighted wait of
// placed assignments), and unplaced (urgency-weighted count of pending
// surgeries).
type Weights struct {
	Makespan  float64
	Idle      float64
	Overtime  float64
	SDST      float64
	Priority  float64
	Unplaced  float64
}

// DefaultWeights matches spec.md §4.6's stated defaults: overtime and
// unplaced surgeries dominate the objective, SDST is a tie-breaking
// nudge.
func DefaultWeights() Weights {
	return Weights{Makespan: 1.0, Idle: 1.0, Overtime: 2.0, SDST: 0.5, Priority: 5.0, Unplaced: 1000.0}
}

// Breakdown reports the objective's components alongside the weighted
// total, so callers (logging, API responses) can explain a cost rather
// than just compare it.
type Breakdown struct {
	MakespanMinutes float64
	IdleMinutes     float64
	OvertimeMinutes float64
	SDSTMinutes     float64
	PriorityPenalty float64
	UnplacedCount   int
	UnplacedPenalty float64
	Total           float64
}

// Cost computes the weighted objective for a schedule (spec.md §4.6):
//
//	cost = wM*makespan + wI*totalIdle + wO*totalOvertime + wS*totalSDST
//	     + wP*priorityPenalty + wU*unplacedPenalty
//
// makespan is max(end) - min(setupStart) across all assignments.
// priorityPenalty sums, over every placed assignment, urgencyWeight(urgency)
// times the wait from arrivalOrOpen to operationStart. unplacedPenalty sums
// urgencyWeight(urgency) over pending surgeries, so leaving an urgent case
// unplaced costs more than leaving a routine one. Lower is better. The
// function is pure: it reads schedule and snapshot but never mutates either.
func Cost(schedule entity.Schedule, snapshot entity.RunSnapshot, w Weights) Breakdown {
	var b Breakdown
	roomIDs := schedule.RoomIDs()

	var minSetup, maxEnd time.Time
	for _, rid := range roomIDs {
		room, ok := snapshot.RoomByID(rid)
		if !ok {
			continue
		}
		assignments := schedule.InRoom(rid)
		if len(assignments) == 0 {
			continue
		}

		last := assignments[len(assignments)-1]
		if last.End.After(room.CloseTime) {
			b.OvertimeMinutes += last.End.Sub(room.CloseTime).Minutes()
		}

		cursor := room.OpenTime
		for _, a := range assignments {
			if a.SetupStart.After(cursor) {
				b.IdleMinutes += a.SetupStart.Sub(cursor).Minutes()
			}
			b.SDSTMinutes += float64(a.AppliedSetupMinutes)
			cursor = maxTime(cursor, a.End)

			if minSetup.IsZero() || a.SetupStart.Before(minSetup) {
				minSetup = a.SetupStart
			}
			if a.End.After(maxEnd) {
				maxEnd = a.End
			}

			surgery, found := findSurgeryByID(snapshot, a.SurgeryID)
			arrivalOrOpen := room.OpenTime
			if found && surgery.ArrivalTime != nil {
				arrivalOrOpen = *surgery.ArrivalTime
			}
			urgency := entity.Scheduled
			if found {
				urgency = surgery.Urgency
			}
			wait := a.OperationStart.Sub(arrivalOrOpen).Minutes()
			b.PriorityPenalty += urgencyWeight(urgency) * wait
		}
	}
	if !maxEnd.IsZero() {
		b.MakespanMinutes = maxEnd.Sub(minSetup).Minutes()
	}

	b.UnplacedCount = len(schedule.Pending)
	for _, s := range schedule.Pending {
		b.UnplacedPenalty += urgencyWeight(s.Urgency)
	}

	b.Total = w.Makespan*b.MakespanMinutes +
		w.Idle*b.IdleMinutes +
		w.Overtime*b.OvertimeMinutes +
		w.SDST*b.SDSTMinutes +
		w.Priority*b.PriorityPenalty +
		w.Unplaced*b.UnplacedPenalty
	return b
}

// urgencyWeight maps Urgency to a priority-penalty multiplier: higher
// urgency left unplaced costs more.
func urgencyWeight(u entity.Urgency) float64 {
	return float64(u) + 1
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

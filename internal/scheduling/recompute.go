package scheduling

import (
	"sort"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// RecomputeRoom re-walks a room's assignment sequence in start-time
// order, recomputing AppliedSetupMinutes, SetupStart, OperationStart,
// and End for every assignment after a neighborhood move has changed
// the sequence (spec.md §4.3). It is a pure function: the input slice
// is read-only and a new slice is returned.
//
// Running RecomputeRoom twice on the same input is a fixed point: once
// a sequence is internally consistent, recomputing it again reproduces
// the same timings (spec.md §8).
func RecomputeRoom(room entity.OperatingRoom, assignments []entity.Assignment, durations map[entity.SurgeryID]int, resolver *sdst.Resolver) []entity.Assignment {
	ordered := make([]entity.Assignment, len(assignments))
	copy(ordered, assignments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SetupStart.Before(ordered[j].SetupStart) })

	out := make([]entity.Assignment, 0, len(ordered))
	var prevEnd time.Time
	prevType := entity.NoneSurgeryTypeID
	hasPrev := false

	for _, a := range ordered {
		setupStart := room.OpenTime
		if hasPrev && prevEnd.After(setupStart) {
			setupStart = prevEnd
		}
		applied := resolver.Minutes(prevType, a.SurgeryTypeID)
		operationStart := setupStart.Add(time.Duration(applied) * time.Minute)
		duration := durations[a.SurgeryID]
		end := operationStart.Add(time.Duration(duration) * time.Minute)

		a.SetupStart = setupStart
		a.AppliedSetupMinutes = applied
		a.OperationStart = operationStart
		a.End = end

		out = append(out, a)
		prevEnd = end
		prevType = a.SurgeryTypeID
		hasPrev = true
	}
	return out
}

// Durations extracts a SurgeryID->DurationMinutes lookup from a
// surgery list, the shape RecomputeRoom needs since assignments
// themselves don't carry duration.
func Durations(surgeries []entity.Surgery) map[entity.SurgeryID]int {
	m := make(map[entity.SurgeryID]int, len(surgeries))
	for _, s := range surgeries {
		m[s.ID] = s.DurationMinutes
	}
	return m
}

// Package scheduling provides pure functional SDST-aware scheduling
// utilities: initial-solution construction, next-available-slot
// search, and room sequence recomputation. No side effects, no
// database access, no I/O — everything here is a function of its
// arguments (spec.md §4.3).
package scheduling

import (
	"sort"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// InitialSolution orders pending surgeries by urgency desc, then
// arrival asc, then id asc for determinism (there is no separate
// priority key, and the caller's order does not survive the sort since
// ids break every remaining tie), and greedily places each
// one into the room that minimizes its earliest feasible setup start,
// breaking ties by lowest resulting total SDST for that room and then
// lowest room id (spec.md §4.3).
func InitialSolution(surgeries []entity.Surgery, rooms []entity.OperatingRoom, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) entity.Schedule {
	ordered := make([]entity.Surgery, len(surgeries))
	copy(ordered, surgeries)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Urgency != b.Urgency {
			return a.Urgency > b.Urgency
		}
		at, bt := a.ArrivalOrZero(), b.ArrivalOrZero()
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return idLess(a.ID, b.ID)
	})

	sortedRooms := make([]entity.OperatingRoom, len(rooms))
	copy(sortedRooms, rooms)
	sort.Slice(sortedRooms, func(i, j int) bool { return idLess(sortedRooms[i].ID, sortedRooms[j].ID) })

	schedule := entity.Schedule{}
	for _, surgery := range ordered {
		best, ok := bestRoomPlacement(surgery, sortedRooms, snapshot, schedule, resolver, checker)
		if !ok {
			schedule = schedule.WithPending(surgery)
			continue
		}
		schedule = schedule.WithAssignment(best)
	}
	return schedule
}

// bestRoomPlacement finds, across all rooms, the feasible placement
// with the earliest setup start; ties break by lowest resulting total
// SDST for that room, then lowest room id.
func bestRoomPlacement(surgery entity.Surgery, rooms []entity.OperatingRoom, snapshot entity.RunSnapshot, schedule entity.Schedule, resolver *sdst.Resolver, checker *feasibility.Checker) (entity.Assignment, bool) {
	var bestAssignment entity.Assignment
	var bestRoomSDST int
	found := false

	for _, room := range rooms {
		setupStart, appliedSetup, ok := NextAvailable(room, surgery, snapshot, schedule, resolver, checker)
		if !ok {
			continue
		}
		candidate := buildAssignment(surgery, room, setupStart, appliedSetup)
		roomTotalSDST := totalSDSTInRoom(schedule.InRoom(room.ID)) + appliedSetup

		if !found {
			bestAssignment, bestRoomSDST, found = candidate, roomTotalSDST, true
			continue
		}
		if setupStart.Before(bestAssignment.SetupStart) {
			bestAssignment, bestRoomSDST = candidate, roomTotalSDST
			continue
		}
		if setupStart.Equal(bestAssignment.SetupStart) {
			if roomTotalSDST < bestRoomSDST {
				bestAssignment, bestRoomSDST = candidate, roomTotalSDST
				continue
			}
			if roomTotalSDST == bestRoomSDST && idLess(room.ID, bestAssignment.RoomID) {
				bestAssignment, bestRoomSDST = candidate, roomTotalSDST
			}
		}
	}
	return bestAssignment, found
}

func totalSDSTInRoom(assignments []entity.Assignment) int {
	total := 0
	for _, a := range assignments {
		total += a.AppliedSetupMinutes
	}
	return total
}

func buildAssignment(surgery entity.Surgery, room entity.OperatingRoom, setupStart time.Time, appliedSetup int) entity.Assignment {
	operationStart := setupStart.Add(time.Duration(appliedSetup) * time.Minute)
	end := operationStart.Add(time.Duration(surgery.DurationMinutes) * time.Minute)
	return entity.Assignment{
		SurgeryID:           surgery.ID,
		RoomID:              room.ID,
		SurgeryTypeID:       surgery.SurgeryTypeID,
		SetupStart:          setupStart,
		OperationStart:      operationStart,
		End:                 end,
		AppliedSetupMinutes: appliedSetup,
		SurgeonID:           surgery.RequiredSurgeonID,
		RequiredEquipment:   surgery.RequiredEquipment,
		RequiredRoles:       surgery.RequiredRoles,
	}
}

// idLess gives a deterministic total order over uuid-based ids by
// their canonical string form.
func idLess(a, b [16]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

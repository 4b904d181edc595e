package optimizer

import (
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/scheduling"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

func minutesDuration(n int) time.Duration { return time.Duration(n) * time.Minute }

// Neighbor is a candidate schedule reachable from the current one by a
// single move, paired with the fingerprint used to test and record it
// against tabu memory.
type Neighbor struct {
	Schedule    entity.Schedule
	Fingerprint Fingerprint
}

// EnabledMoves selects which move operators Generate considers.
type EnabledMoves map[MoveKind]bool

// AllMoves enables every move operator.
func AllMoves() EnabledMoves {
	return EnabledMoves{
		MoveSwap: true, MoveInsert: true, MoveShift: true,
		MovePendingIn: true, MoveRemoveToPending: true,
	}
}

// Generate produces every feasible neighbor of schedule across the
// enabled move operators (spec.md §4.4). A move whose resulting
// schedule is infeasible, or that panics while being evaluated (a
// malformed candidate), is silently skipped rather than surfaced.
func Generate(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker, enabled EnabledMoves) []Neighbor {
	var out []Neighbor
	if enabled[MoveSwap] {
		out = append(out, swapMoves(schedule, snapshot, resolver, checker)...)
	}
	if enabled[MoveShift] {
		out = append(out, shiftMoves(schedule, snapshot, resolver, checker)...)
	}
	if enabled[MoveInsert] {
		out = append(out, insertMoves(schedule, snapshot, resolver, checker)...)
	}
	if enabled[MovePendingIn] {
		out = append(out, pendingInMoves(schedule, snapshot, resolver, checker)...)
	}
	if enabled[MoveRemoveToPending] {
		out = append(out, removeToPendingMoves(schedule, snapshot, resolver, checker)...)
	}
	return out
}

// swapMoves exchanges the room assignment of every pair of
// cross-room assignments.
func swapMoves(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) []Neighbor {
	var out []Neighbor
	assignments := schedule.Assignments
	for i := 0; i < len(assignments); i++ {
		for j := i + 1; j < len(assignments); j++ {
			a, b := assignments[i], assignments[j]
			if a.RoomID == b.RoomID {
				continue
			}
			candidate, ok := safeCandidate(func() (entity.Schedule, bool) {
				newA, newB := a, b
				newA.RoomID, newB.RoomID = b.RoomID, a.RoomID
				c := schedule.WithAssignment(newA).WithAssignment(newB)
				c = recomputeRooms(c, snapshot, resolver, a.RoomID, b.RoomID)
				return c, roomsFeasible(c, snapshot, checker, a.RoomID, b.RoomID)
			})
			if !ok {
				continue
			}
			bID := b.SurgeryID
			out = append(out, Neighbor{
				Schedule:    candidate,
				Fingerprint: Fingerprint{Kind: MoveSwap, SurgeryA: a.SurgeryID, SurgeryB: &bID, RoomTarget: b.RoomID},
			})
		}
	}
	return out
}

// shiftMoves reorders each pair of sequence-adjacent assignments
// within the same room.
func shiftMoves(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) []Neighbor {
	var out []Neighbor
	for _, rid := range schedule.RoomIDs() {
		seq := schedule.InRoom(rid)
		for i := 0; i+1 < len(seq); i++ {
			first, second := seq[i], seq[i+1]
			candidate, ok := safeCandidate(func() (entity.Schedule, bool) {
				reordered := make([]entity.Assignment, len(seq))
				copy(reordered, seq)
				reordered[i], reordered[i+1] = reordered[i+1], reordered[i]
				// RecomputeRoom orders by SetupStart, so trade the two
				// start times as well or the swap would be undone.
				reordered[i].SetupStart, reordered[i+1].SetupStart = first.SetupStart, second.SetupStart
				room, found := snapshot.RoomByID(rid)
				if !found {
					return entity.Schedule{}, false
				}
				recomputed := scheduling.RecomputeRoom(room, reordered, scheduling.Durations(snapshot.Surgeries), resolver)
				c := schedule.ReplaceRoom(rid, recomputed)
				return c, roomsFeasible(c, snapshot, checker, rid)
			})
			if !ok {
				continue
			}
			secondID := second.SurgeryID
			out = append(out, Neighbor{
				Schedule:    candidate,
				Fingerprint: Fingerprint{Kind: MoveShift, SurgeryA: first.SurgeryID, SurgeryB: &secondID, RoomTarget: rid},
			})
		}
	}
	return out
}

// insertMoves relocates each assigned surgery into a different room at
// that room's next available slot.
func insertMoves(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) []Neighbor {
	var out []Neighbor
	for _, a := range schedule.Assignments {
		surgery, ok := findSurgeryByID(snapshot, a.SurgeryID)
		if !ok {
			continue
		}
		for _, room := range snapshot.Rooms {
			if room.ID == a.RoomID {
				continue
			}
			room := room
			candidate, ok := safeCandidate(func() (entity.Schedule, bool) {
				without := schedule.WithoutAssignment(a.SurgeryID)
				without = recomputeRooms(without, snapshot, resolver, a.RoomID)
				setupStart, applied, found := scheduling.NextAvailable(room, surgery, snapshot, without, resolver, checker)
				if !found {
					return entity.Schedule{}, false
				}
				moved := entity.Assignment{
					SurgeryID: surgery.ID, RoomID: room.ID, SurgeryTypeID: surgery.SurgeryTypeID,
					SetupStart: setupStart, AppliedSetupMinutes: applied,
					OperationStart: setupStart.Add(minutesDuration(applied)),
					End:            setupStart.Add(minutesDuration(applied)).Add(minutesDuration(surgery.DurationMinutes)),
					SurgeonID: surgery.RequiredSurgeonID, RequiredEquipment: surgery.RequiredEquipment, RequiredRoles: surgery.RequiredRoles,
				}
				c := without.WithAssignment(moved)
				c = recomputeRooms(c, snapshot, resolver, room.ID)
				return c, roomsFeasible(c, snapshot, checker, a.RoomID, room.ID)
			})
			if !ok {
				continue
			}
			out = append(out, Neighbor{
				Schedule:    candidate,
				Fingerprint: Fingerprint{Kind: MoveInsert, SurgeryA: a.SurgeryID, RoomTarget: room.ID},
			})
		}
	}
	return out
}

// pendingInMoves tries to place each pending surgery into each room at
// that room's next available slot.
func pendingInMoves(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) []Neighbor {
	var out []Neighbor
	for _, surgery := range schedule.Pending {
		surgery := surgery
		for _, room := range snapshot.Rooms {
			room := room
			candidate, ok := safeCandidate(func() (entity.Schedule, bool) {
				setupStart, applied, found := scheduling.NextAvailable(room, surgery, snapshot, schedule, resolver, checker)
				if !found {
					return entity.Schedule{}, false
				}
				placed := entity.Assignment{
					SurgeryID: surgery.ID, RoomID: room.ID, SurgeryTypeID: surgery.SurgeryTypeID,
					SetupStart: setupStart, AppliedSetupMinutes: applied,
					OperationStart: setupStart.Add(minutesDuration(applied)),
					End:            setupStart.Add(minutesDuration(applied)).Add(minutesDuration(surgery.DurationMinutes)),
					SurgeonID: surgery.RequiredSurgeonID, RequiredEquipment: surgery.RequiredEquipment, RequiredRoles: surgery.RequiredRoles,
				}
				c := schedule.WithAssignment(placed)
				c = recomputeRooms(c, snapshot, resolver, room.ID)
				return c, roomsFeasible(c, snapshot, checker, room.ID)
			})
			if !ok {
				continue
			}
			out = append(out, Neighbor{
				Schedule:    candidate,
				Fingerprint: Fingerprint{Kind: MovePendingIn, SurgeryA: surgery.ID, RoomTarget: room.ID},
			})
		}
	}
	return out
}

// removeToPendingMoves evicts each assigned surgery back to Pending.
func removeToPendingMoves(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, checker *feasibility.Checker) []Neighbor {
	var out []Neighbor
	for _, a := range schedule.Assignments {
		surgery, ok := findSurgeryByID(snapshot, a.SurgeryID)
		if !ok {
			continue
		}
		candidate, ok := safeCandidate(func() (entity.Schedule, bool) {
			c := schedule.WithPending(surgery)
			c = recomputeRooms(c, snapshot, resolver, a.RoomID)
			return c, roomsFeasible(c, snapshot, checker, a.RoomID)
		})
		if !ok {
			continue
		}
		out = append(out, Neighbor{
			Schedule:    candidate,
			Fingerprint: Fingerprint{Kind: MoveRemoveToPending, SurgeryA: a.SurgeryID, RoomTarget: a.RoomID},
		})
	}
	return out
}

func recomputeRooms(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, roomIDs ...entity.RoomID) entity.Schedule {
	durations := scheduling.Durations(snapshot.Surgeries)
	for _, rid := range roomIDs {
		room, ok := snapshot.RoomByID(rid)
		if !ok {
			continue
		}
		updated := scheduling.RecomputeRoom(room, schedule.InRoom(rid), durations, resolver)
		schedule = schedule.ReplaceRoom(rid, updated)
	}
	return schedule
}

// roomsFeasible re-checks every assignment currently in roomIDs
// against the rest of schedule, the same way feasibility.CheckSchedule
// does but scoped to the rooms a move actually touched.
func roomsFeasible(schedule entity.Schedule, snapshot entity.RunSnapshot, checker *feasibility.Checker, roomIDs ...entity.RoomID) bool {
	for _, rid := range roomIDs {
		room, ok := snapshot.RoomByID(rid)
		if !ok {
			return false
		}
		for _, a := range schedule.InRoom(rid) {
			surgery, ok := findSurgeryByID(snapshot, a.SurgeryID)
			if !ok {
				surgery = entity.Surgery{
					ID: a.SurgeryID, SurgeryTypeID: a.SurgeryTypeID,
					DurationMinutes: int(a.End.Sub(a.OperationStart).Minutes()),
					RequiredSurgeonID: a.SurgeonID, RequiredEquipment: a.RequiredEquipment, RequiredRoles: a.RequiredRoles,
				}
			}
			without := schedule.WithoutAssignment(a.SurgeryID)
			placement := feasibility.Placement{Surgery: surgery, Room: room, SetupStart: a.SetupStart}
			if !checker.Check(placement, snapshot, without, true).Feasible {
				return false
			}
		}
	}
	return true
}

func findSurgeryByID(snapshot entity.RunSnapshot, id entity.SurgeryID) (entity.Surgery, bool) {
	for _, s := range snapshot.Surgeries {
		if s.ID == id {
			return s, true
		}
	}
	return entity.Surgery{}, false
}

// safeCandidate runs a candidate-building closure and recovers from any
// panic (e.g. an InvariantViolationError from the feasibility checker
// on a malformed candidate), treating it as "not feasible" rather than
// letting one bad neighbor abort the whole search.
func safeCandidate(build func() (entity.Schedule, bool)) (result entity.Schedule, ok bool) {
	defer func() {
		if recover() != nil {
			result, ok = entity.Schedule{}, false
		}
	}()
	return build()
}

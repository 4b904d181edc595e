package entity

import "sort"

// Schedule is a candidate solution: a set of Assignments plus the set
// of surgeries that could not be placed. Schedules are treated as
// immutable values — every neighborhood move in internal/optimizer
// produces a new Schedule rather than mutating one in place.
type Schedule struct {
	Assignments []Assignment
	Pending     []Surgery
}

// Clone returns a deep-enough copy of the schedule (new backing
// slices) so callers can build a derived schedule without aliasing the
// original's storage.
func (s Schedule) Clone() Schedule {
	out := Schedule{
		Assignments: make([]Assignment, len(s.Assignments)),
		Pending:     make([]Surgery, len(s.Pending)),
	}
	copy(out.Assignments, s.Assignments)
	copy(out.Pending, s.Pending)
	return out
}

// InRoom returns the assignments placed in room, sorted by SetupStart.
func (s Schedule) InRoom(room RoomID) []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if a.RoomID == room {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetupStart.Before(out[j].SetupStart) })
	return out
}

// RoomIDs returns the distinct rooms that currently hold at least one
// assignment.
func (s Schedule) RoomIDs() []RoomID {
	seen := make(map[RoomID]bool)
	var ids []RoomID
	for _, a := range s.Assignments {
		if !seen[a.RoomID] {
			seen[a.RoomID] = true
			ids = append(ids, a.RoomID)
		}
	}
	return ids
}

// Find returns the assignment for surgeryID, if any.
func (s Schedule) Find(surgeryID SurgeryID) (Assignment, bool) {
	for _, a := range s.Assignments {
		if a.SurgeryID == surgeryID {
			return a, true
		}
	}
	return Assignment{}, false
}

// WithoutAssignment returns a new schedule with surgeryID's assignment
// removed (it is the caller's job to move it to Pending if desired).
func (s Schedule) WithoutAssignment(surgeryID SurgeryID) Schedule {
	out := s.Clone()
	filtered := out.Assignments[:0]
	for _, a := range out.Assignments {
		if a.SurgeryID != surgeryID {
			filtered = append(filtered, a)
		}
	}
	out.Assignments = filtered
	return out
}

// WithAssignment returns a new schedule with a.SurgeryID's prior
// assignment (if any) replaced by a, and a removed from Pending.
func (s Schedule) WithAssignment(a Assignment) Schedule {
	out := s.WithoutAssignment(a.SurgeryID)
	out.Assignments = append(out.Assignments, a)
	filteredPending := out.Pending[:0]
	for _, p := range out.Pending {
		if p.ID != a.SurgeryID {
			filteredPending = append(filteredPending, p)
		}
	}
	out.Pending = filteredPending
	return out
}

// WithPending returns a new schedule with surgery appended to Pending
// (and its assignment, if any, removed).
func (s Schedule) WithPending(surgery Surgery) Schedule {
	out := s.WithoutAssignment(surgery.ID)
	for _, p := range out.Pending {
		if p.ID == surgery.ID {
			return out
		}
	}
	out.Pending = append(out.Pending, surgery)
	return out
}

// ReplaceRoom returns a new schedule where room's assignments are
// replaced wholesale by updated (used after recomputeRoom re-walks a
// sequence).
func (s Schedule) ReplaceRoom(room RoomID, updated []Assignment) Schedule {
	out := s.Clone()
	filtered := out.Assignments[:0]
	for _, a := range out.Assignments {
		if a.RoomID != room {
			filtered = append(filtered, a)
		}
	}
	out.Assignments = append(filtered, updated...)
	return out
}

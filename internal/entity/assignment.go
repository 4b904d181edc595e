package entity

import "time"

// Assignment places one surgery in one room at a specific time with a
// computed setup. Invariant: SetupStart <= OperationStart ==
// SetupStart + AppliedSetupMinutes, and End == OperationStart +
// surgery duration.
type Assignment struct {
	SurgeryID           SurgeryID
	RoomID              RoomID
	SurgeryTypeID       SurgeryTypeID
	SetupStart          time.Time
	OperationStart      time.Time
	End                 time.Time
	AppliedSetupMinutes int
	SurgeonID           *SurgeonID
	RequiredEquipment   []EquipmentID
	RequiredRoles       []StaffRole
	AssignedStaffIDs    []StaffID
}

// SetupInterval returns the [SetupStart, End) interval used for room
// occupancy and equipment-contention checks (per spec.md §9 default).
func (a Assignment) SetupInterval() (time.Time, time.Time) {
	return a.SetupStart, a.End
}

// OperationInterval returns the [OperationStart, End) interval used for
// surgeon/staff contention checks.
func (a Assignment) OperationInterval() (time.Time, time.Time) {
	return a.OperationStart, a.End
}

// Overlaps reports whether two assignments' given intervals overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Recompute derives OperationStart and End from SetupStart,
// AppliedSetupMinutes and the surgery's duration. It is the single
// place that encodes the timing invariant from spec.md §3.
func (a Assignment) Recompute(durationMinutes int) Assignment {
	a.OperationStart = a.SetupStart.Add(time.Duration(a.AppliedSetupMinutes) * time.Minute)
	a.End = a.OperationStart.Add(time.Duration(durationMinutes) * time.Minute)
	return a
}

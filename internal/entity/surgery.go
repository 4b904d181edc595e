package entity

import "time"

// Surgery is a pending or scheduled procedure. Created by external
// intake; mutated only by the engine (status, arrival); never
// destroyed outright (cancellation is a status transition, not a
// delete).
type Surgery struct {
	ID                SurgeryID
	SurgeryTypeID      SurgeryTypeID
	DurationMinutes   int
	Urgency           Urgency
	RequiredSurgeonID *SurgeonID
	RequiredEquipment []EquipmentID
	RequiredRoles     []StaffRole
	Status            SurgeryStatus
	ArrivalTime       *time.Time
	MaxWaitMinutes    *int
}

// ArrivalOrZero returns ArrivalTime if set, else the zero time. Used by
// scheduling.InitialSolution's arrival-ascending ordering, where a
// surgery without an arrival time sorts first.
func (s Surgery) ArrivalOrZero() time.Time {
	if s.ArrivalTime == nil {
		return time.Time{}
	}
	return *s.ArrivalTime
}

// RequiresEquipment reports whether id is among the surgery's required
// equipment.
func (s Surgery) RequiresEquipment(id EquipmentID) bool {
	for _, e := range s.RequiredEquipment {
		if e == id {
			return true
		}
	}
	return false
}

// RequiresRole reports whether role is among the surgery's required
// staff roles.
func (s Surgery) RequiresRole(role StaffRole) bool {
	for _, r := range s.RequiredRoles {
		if r == role {
			return true
		}
	}
	return false
}

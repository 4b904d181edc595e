package entity

// RunSnapshot is the immutable, process-wide bundle of domain data
// loaded once per optimization or emergency-insertion run: the
// pending surgeries, the rooms with their already-scheduled
// assignments, the SDST matrix, the rule set, and the resource
// catalogs. Safe to share across readers within the run; never
// mutated in place (spec.md §5 "loaded once per run into an immutable
// snapshot").
type RunSnapshot struct {
	Surgeries  []Surgery
	Rooms      []OperatingRoom
	Existing   Schedule // assignments already scheduled, rooms keyed by RoomID
	SurgeryTypes map[SurgeryTypeID]SurgeryType
	SDST       SDSTMatrix
	Rules      []Rule
	Staff      []Staff
	Equipment  []Equipment
	Version    string // optimistic-concurrency token for persistAssignments
}

// RoomByID looks up a room from the snapshot.
func (s RunSnapshot) RoomByID(id RoomID) (OperatingRoom, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return OperatingRoom{}, false
}

// SurgeryByID looks up a pending surgery from the snapshot.
func (s RunSnapshot) SurgeryByID(id SurgeryID) (Surgery, bool) {
	for _, surgery := range s.Surgeries {
		if surgery.ID == id {
			return surgery, true
		}
	}
	return Surgery{}, false
}

// EquipmentByID looks up an equipment resource from the snapshot.
func (s RunSnapshot) EquipmentByID(id EquipmentID) (Equipment, bool) {
	for _, e := range s.Equipment {
		if e.ID == id {
			return e, true
		}
	}
	return Equipment{}, false
}

// StaffByRole returns every staff member with the given role.
func (s RunSnapshot) StaffByRole(role StaffRole) []Staff {
	var out []Staff
	for _, st := range s.Staff {
		if st.Role == role {
			out = append(out, st)
		}
	}
	return out
}

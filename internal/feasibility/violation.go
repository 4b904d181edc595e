package feasibility

import "github.com/schedcu/surgical-scheduler/internal/entity"

// Violation is a single feasibility finding, shaped per spec.md §4.2.
type Violation struct {
	RuleID           entity.RuleID
	Kind             entity.ViolationKind
	Severity         entity.Severity
	Description      string
	SurgeryID        *entity.SurgeryID
	RoomID           *entity.RoomID
	EquipmentID      *entity.EquipmentID
	StaffID          *entity.StaffID
	SuggestedActions []string
}

// Verdict is the result of checking a single placement.
type Verdict struct {
	Feasible   bool
	Violations []Violation
	Warnings   []Violation
}

// add appends v to Violations if critical, else to Warnings, and
// updates Feasible accordingly.
func (vd *Verdict) add(v Violation) {
	if v.Severity == entity.SeverityCritical {
		vd.Violations = append(vd.Violations, v)
		vd.Feasible = false
		return
	}
	vd.Warnings = append(vd.Warnings, v)
}

// ScheduleReport aggregates verdicts for every assignment in a
// schedule, produced by CheckSchedule.
type ScheduleReport struct {
	Date       entity.Date
	Feasible   bool
	PerSurgery map[entity.SurgeryID]Verdict
}

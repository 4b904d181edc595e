// Package feasibility evaluates a candidate placement against hard
// constraints and a pluggable rule set, emitting structured violations
// rather than throwing for domain-level infeasibility (spec.md §4.2).
// The checker itself never mutates its inputs and is safe for
// concurrent use once constructed.
package feasibility

import (
	"sort"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// Policy configures constraints whose strictness is a configuration
// choice rather than fixed by the domain (spec.md §9 Open Questions).
type Policy struct {
	AllowOvertime          bool
	EquipmentUsesSetupWindow bool // true: [setupStart,end); false: [operationStart,end)
}

// DefaultPolicy matches the spec's stated defaults.
func DefaultPolicy() Policy {
	return Policy{AllowOvertime: false, EquipmentUsesSetupWindow: true}
}

// Placement is a candidate (surgery, room, setupStart) to evaluate.
type Placement struct {
	Surgery    entity.Surgery
	Room       entity.OperatingRoom
	SetupStart time.Time
}

// Checker evaluates placements and whole schedules against the
// built-in hard constraints plus a custom rule set.
type Checker struct {
	resolver *sdst.Resolver
	policy   Policy
}

// New builds a Checker bound to a single run's SDST resolver and
// policy.
func New(resolver *sdst.Resolver, policy Policy) *Checker {
	return &Checker{resolver: resolver, policy: policy}
}

// Check evaluates placement against schedule (the assignments already
// present, excluding placement.Surgery.ID's own prior assignment if
// any) and the run snapshot's rule set. When fastFail is true,
// evaluation stops at the first Critical violation, whether it comes
// from a built-in check or a custom rule; otherwise every check and
// rule runs so callers get a complete report.
func (c *Checker) Check(p Placement, snapshot entity.RunSnapshot, schedule entity.Schedule, fastFail bool) Verdict {
	verdict := Verdict{Feasible: true}

	if p.Surgery.DurationMinutes <= 0 {
		panic(&entity.InvariantViolationError{Reason: "surgery duration must be positive"})
	}

	prev, hasPrev := previousAssignment(schedule, p.Room.ID, p.Surgery.ID, p.SetupStart)
	appliedSetup := c.setupMinutesFor(prev, hasPrev, p.Surgery.SurgeryTypeID)
	operationStart := p.SetupStart.Add(time.Duration(appliedSetup) * time.Minute)
	end := operationStart.Add(time.Duration(p.Surgery.DurationMinutes) * time.Minute)

	checks := []func() *Violation{
		func() *Violation { return c.checkRoomAvailable(p, end) },
		func() *Violation { return c.checkRoomHours(p, end) },
		func() *Violation { return c.checkRoomOverlap(p, end, schedule) },
		func() *Violation { return c.checkSDST(p, prev, appliedSetup) },
		func() *Violation { return c.checkSurgeon(p, operationStart, end, schedule, snapshot) },
	}
	checks = append(checks, c.checkEquipment(p, p.SetupStart, operationStart, end, schedule, snapshot)...)
	checks = append(checks, c.checkStaff(p, operationStart, end, snapshot)...)

	for _, check := range checks {
		v := check()
		if v == nil {
			continue
		}
		verdict.add(*v)
		if fastFail && v.Severity == entity.SeverityCritical {
			return verdict
		}
	}

	for _, v := range c.evaluateRules(p, snapshot, operationStart, end) {
		verdict.add(v)
		if fastFail && v.Severity == entity.SeverityCritical {
			return verdict
		}
	}

	return verdict
}

// CheckSchedule evaluates every assignment in schedule independently
// and aggregates the result.
func (c *Checker) CheckSchedule(schedule entity.Schedule, date entity.Date, snapshot entity.RunSnapshot) ScheduleReport {
	report := ScheduleReport{Date: date, Feasible: true, PerSurgery: make(map[entity.SurgeryID]Verdict)}
	for _, a := range schedule.Assignments {
		room, ok := snapshot.RoomByID(a.RoomID)
		if !ok {
			continue
		}
		surgery, ok := findSurgery(snapshot, a.SurgeryID)
		if !ok {
			surgery = entity.Surgery{ID: a.SurgeryID, SurgeryTypeID: a.SurgeryTypeID, DurationMinutes: int(a.End.Sub(a.OperationStart).Minutes())}
		}
		placement := Placement{Surgery: surgery, Room: room, SetupStart: a.SetupStart}
		without := schedule.WithoutAssignment(a.SurgeryID)
		v := c.Check(placement, snapshot, without, false)
		report.PerSurgery[a.SurgeryID] = v
		if !v.Feasible {
			report.Feasible = false
		}
	}
	return report
}

func findSurgery(snapshot entity.RunSnapshot, id entity.SurgeryID) (entity.Surgery, bool) {
	for _, s := range snapshot.Surgeries {
		if s.ID == id {
			return s, true
		}
	}
	return entity.Surgery{}, false
}

// previousAssignment returns the assignment immediately preceding
// setupStart in room (the one with the latest End <= setupStart),
// excluding the surgery being placed.
func previousAssignment(schedule entity.Schedule, room entity.RoomID, excludeSurgery entity.SurgeryID, setupStart time.Time) (entity.Assignment, bool) {
	var best entity.Assignment
	found := false
	for _, a := range schedule.InRoom(room) {
		if a.SurgeryID == excludeSurgery {
			continue
		}
		if a.End.After(setupStart) {
			continue
		}
		if !found || a.End.After(best.End) {
			best = a
			found = true
		}
	}
	return best, found
}

func (c *Checker) setupMinutesFor(prev entity.Assignment, hasPrev bool, toType entity.SurgeryTypeID) int {
	fromType := entity.NoneSurgeryTypeID
	if hasPrev {
		fromType = prev.SurgeryTypeID
	}
	return c.resolver.Minutes(fromType, toType)
}

func (c *Checker) checkRoomAvailable(p Placement, end time.Time) *Violation {
	if p.Room.IsAvailableDuring(p.SetupStart, end) {
		return nil
	}
	rid := p.Room.ID
	sid := p.Surgery.ID
	return &Violation{
		Kind: entity.ViolationRoomAvailability, Severity: entity.SeverityCritical,
		Description: "room is not active or has a maintenance overlap",
		RoomID: &rid, SurgeryID: &sid,
		SuggestedActions: []string{"choose a different room", "reschedule outside maintenance window"},
	}
}

func (c *Checker) checkRoomHours(p Placement, end time.Time) *Violation {
	if p.Room.WithinHours(p.SetupStart, end) {
		return nil
	}
	rid := p.Room.ID
	sid := p.Surgery.ID
	severity := entity.SeverityCritical
	if c.policy.AllowOvertime {
		severity = entity.SeverityMedium
	}
	return &Violation{
		Kind: entity.ViolationRoomHours, Severity: severity,
		Description: "placement falls outside the room's operational window",
		RoomID: &rid, SurgeryID: &sid,
	}
}

func (c *Checker) checkRoomOverlap(p Placement, end time.Time, schedule entity.Schedule) *Violation {
	for _, a := range schedule.InRoom(p.Room.ID) {
		if a.SurgeryID == p.Surgery.ID {
			continue
		}
		if entity.Overlaps(p.SetupStart, end, a.SetupStart, a.End) {
			rid := p.Room.ID
			sid := p.Surgery.ID
			return &Violation{
				Kind: entity.ViolationRoomAvailability, Severity: entity.SeverityCritical,
				Description: "placement overlaps another assignment in the same room",
				RoomID: &rid, SurgeryID: &sid,
			}
		}
	}
	return nil
}

func (c *Checker) checkSDST(p Placement, prev entity.Assignment, appliedSetup int) *Violation {
	if p.SetupStart.Before(prev.End) {
		sid := p.Surgery.ID
		rid := p.Room.ID
		return &Violation{
			Kind: entity.ViolationSDST, Severity: entity.SeverityCritical,
			Description: "setup start precedes the previous assignment's end",
			SurgeryID: &sid, RoomID: &rid,
		}
	}
	_ = appliedSetup
	return nil
}

func (c *Checker) checkSurgeon(p Placement, operationStart, end time.Time, schedule entity.Schedule, snapshot entity.RunSnapshot) *Violation {
	if p.Surgery.RequiredSurgeonID == nil {
		return nil
	}
	surgeonID := *p.Surgery.RequiredSurgeonID
	for _, a := range schedule.Assignments {
		if a.SurgeonID == nil || *a.SurgeonID != surgeonID || a.SurgeryID == p.Surgery.ID {
			continue
		}
		if entity.Overlaps(operationStart, end, a.OperationStart, a.End) {
			sid := p.Surgery.ID
			return &Violation{
				Kind: entity.ViolationSurgeonAvailability, Severity: entity.SeverityCritical,
				Description: "surgeon already has an overlapping operation",
				SurgeryID: &sid, StaffID: &surgeonID,
			}
		}
	}
	for _, st := range snapshot.Staff {
		if st.ID == surgeonID && !st.IsQualifiedFor(p.Surgery.SurgeryTypeID) {
			sid := p.Surgery.ID
			return &Violation{
				Kind: entity.ViolationQualification, Severity: entity.SeverityCritical,
				Description: "surgeon is not qualified for this surgery type",
				SurgeryID: &sid, StaffID: &surgeonID,
			}
		}
	}
	return nil
}

func (c *Checker) checkEquipment(p Placement, setupStart, operationStart, end time.Time, schedule entity.Schedule, snapshot entity.RunSnapshot) []func() *Violation {
	var fns []func() *Violation
	windowStart := setupStart
	if !c.policy.EquipmentUsesSetupWindow {
		windowStart = operationStart
	}
	for _, eqID := range p.Surgery.RequiredEquipment {
		eqID := eqID
		fns = append(fns, func() *Violation {
			eq, ok := snapshot.EquipmentByID(eqID)
			if !ok || !eq.Available {
				sid := p.Surgery.ID
				return &Violation{Kind: entity.ViolationEquipmentAvailability, Severity: entity.SeverityCritical,
					Description: "required equipment is unavailable", SurgeryID: &sid, EquipmentID: &eqID}
			}
			if eq.UnderMaintenanceDuring(windowStart, end) {
				sid := p.Surgery.ID
				return &Violation{Kind: entity.ViolationEquipmentAvailability, Severity: entity.SeverityCritical,
					Description: "required equipment is under maintenance", SurgeryID: &sid, EquipmentID: &eqID}
			}
			concurrent := 0
			for _, a := range schedule.Assignments {
				if a.SurgeryID == p.Surgery.ID {
					continue
				}
				if !assignmentUsesEquipment(a, eqID) {
					continue
				}
				aStart := a.SetupStart
				if !c.policy.EquipmentUsesSetupWindow {
					aStart = a.OperationStart
				}
				if entity.Overlaps(windowStart, end, aStart, a.End) {
					concurrent++
				}
			}
			if concurrent >= eq.Cap() {
				sid := p.Surgery.ID
				return &Violation{Kind: entity.ViolationEquipmentAvailability, Severity: entity.SeverityCritical,
					Description: "required equipment is at its concurrency cap", SurgeryID: &sid, EquipmentID: &eqID}
			}
			return nil
		})
	}
	return fns
}

func assignmentUsesEquipment(a entity.Assignment, eqID entity.EquipmentID) bool {
	for _, e := range a.RequiredEquipment {
		if e == eqID {
			return true
		}
	}
	return false
}

func (c *Checker) checkStaff(p Placement, operationStart, end time.Time, snapshot entity.RunSnapshot) []func() *Violation {
	var fns []func() *Violation
	for _, role := range p.Surgery.RequiredRoles {
		role := role
		fns = append(fns, func() *Violation {
			for _, st := range snapshot.StaffByRole(role) {
				if st.AvailableDuring(operationStart, end) {
					return nil
				}
			}
			sid := p.Surgery.ID
			return &Violation{Kind: entity.ViolationStaffAvailability, Severity: entity.SeverityCritical,
				Description: "no available staff for required role: " + string(role), SurgeryID: &sid,
				SuggestedActions: []string{"reschedule to a window with staff coverage"},
			}
		})
	}
	return fns
}

// evaluateRules runs the custom rule set in ascending-severity order
// (spec.md §4.2).
func (c *Checker) evaluateRules(p Placement, snapshot entity.RunSnapshot, operationStart, end time.Time) []Violation {
	rules := make([]entity.Rule, len(snapshot.Rules))
	copy(rules, snapshot.Rules)
	sort.SliceStable(rules, func(i, j int) bool { return rules[i].Severity.Less(rules[j].Severity) })

	var out []Violation
	for _, rule := range rules {
		if !rule.Scope.AppliesTo(p.Surgery.SurgeryTypeID, p.Room.ID, p.Surgery.RequiredSurgeonID) {
			continue
		}
		if v := evaluateRule(rule, p, operationStart, end); v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// evaluateRule interprets a single rule's Kind against the placement.
func evaluateRule(rule entity.Rule, p Placement, operationStart, end time.Time) *Violation {
	sid := p.Surgery.ID
	fail := func(desc string) *Violation {
		return &Violation{RuleID: rule.ID, Kind: entity.ViolationCustomRule, Severity: rule.Severity, Description: desc, SurgeryID: &sid}
	}

	switch rule.Kind {
	case entity.RuleKindDurationBound:
		min, hasMin := rule.Params["min"]
		max, hasMax := rule.Params["max"]
		if hasMin && min.Kind == entity.ParamNumber && float64(p.Surgery.DurationMinutes) < min.Number {
			return fail("surgery duration below rule's minimum bound")
		}
		if hasMax && max.Kind == entity.ParamNumber && float64(p.Surgery.DurationMinutes) > max.Number {
			return fail("surgery duration above rule's maximum bound")
		}
	case entity.RuleKindTimeWindow:
		window, ok := rule.Params["window"]
		if ok && window.Kind == entity.ParamInterval {
			dayStart := time.Date(operationStart.Year(), operationStart.Month(), operationStart.Day(), 0, 0, 0, 0, operationStart.Location())
			opMinutes := int(operationStart.Sub(dayStart).Minutes())
			endMinutes := int(end.Sub(dayStart).Minutes())
			if opMinutes < window.IntervalStart || endMinutes > window.IntervalEnd {
				return fail("placement falls outside the rule's allowed time window")
			}
		}
	case entity.RuleKindForbiddenTransition:
		forbidden, ok := rule.Params["to"]
		if ok && forbidden.Kind == entity.ParamText && forbidden.Text == p.Surgery.SurgeryTypeID.String() {
			return fail("surgery type is a forbidden transition target under this rule")
		}
	case entity.RuleKindResourceRestriction:
		if allowed, ok := rule.Params["rooms"]; ok && allowed.Kind == entity.ParamIDList {
			if !containsText(allowed.IDs, p.Room.ID.String()) {
				return fail("room is not in the rule's allowed resource list")
			}
		}
	case entity.RuleKindCustom:
		// Custom rules with no interpretable parameters never fail on
		// their own; they exist as scaffolding for operator-authored
		// extensions evaluated outside this package.
	}
	return nil
}

func containsText(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

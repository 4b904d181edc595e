package entity

// Rule is a pluggable feasibility rule. Inheritance hierarchies for
// rule types collapse into this single tagged variant (spec.md §9);
// the evaluation logic lives in internal/feasibility, which knows how
// to interpret each Kind against a placement.
type Rule struct {
	ID       RuleID
	Kind     RuleKind
	Severity Severity
	Scope    RuleScope
	Params   map[string]Param
}

// RuleScope restricts a rule to specific surgery types, rooms, or
// surgeons. A nil/empty slice means "applies to all".
type RuleScope struct {
	SurgeryTypes []SurgeryTypeID
	Rooms        []RoomID
	Surgeons     []SurgeonID
}

// AppliesTo reports whether the rule's scope covers the given
// placement context. An empty list in any dimension means unrestricted
// for that dimension.
func (s RuleScope) AppliesTo(surgeryType SurgeryTypeID, room RoomID, surgeon *SurgeonID) bool {
	if len(s.SurgeryTypes) > 0 && !containsID(s.SurgeryTypes, surgeryType) {
		return false
	}
	if len(s.Rooms) > 0 && !containsID(s.Rooms, room) {
		return false
	}
	if len(s.Surgeons) > 0 {
		if surgeon == nil || !containsID(s.Surgeons, *surgeon) {
			return false
		}
	}
	return true
}

func containsID(ids []SurgeonID, id SurgeonID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// ParamKind tags the variant held by a Param.
type ParamKind string

const (
	ParamNumber   ParamKind = "NUMBER"
	ParamText     ParamKind = "TEXT"
	ParamInterval ParamKind = "INTERVAL"
	ParamIDList   ParamKind = "ID_LIST"
)

// Param is a tagged-variant rule parameter value: a number, a string,
// a time-of-day interval (minutes since midnight), or a list of ids.
// Replaces the duck-typed parameter dictionaries of the source system
// (spec.md §9).
type Param struct {
	Kind ParamKind

	Number        float64
	Text          string
	IntervalStart int // minutes since midnight
	IntervalEnd   int
	IDs           []string
}

// NumberParam builds a numeric Param.
func NumberParam(v float64) Param { return Param{Kind: ParamNumber, Number: v} }

// TextParam builds a string Param.
func TextParam(v string) Param { return Param{Kind: ParamText, Text: v} }

// IntervalParam builds a minutes-since-midnight interval Param.
func IntervalParam(start, end int) Param {
	return Param{Kind: ParamInterval, IntervalStart: start, IntervalEnd: end}
}

// IDListParam builds an id-list Param.
func IDListParam(ids ...string) Param { return Param{Kind: ParamIDList, IDs: ids} }

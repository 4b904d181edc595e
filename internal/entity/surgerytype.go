package entity

import "github.com/google/uuid"

// SurgeryType is a read-only classification of procedures, used as
// both ends of an SDST transition.
type SurgeryType struct {
	ID          SurgeryTypeID
	Code        string
	DisplayName string
}

// NoneSurgeryTypeID is the sentinel "from" type denoting an empty room
// sequence or the first surgery of the day (spec.md §3, SDST Matrix).
var NoneSurgeryTypeID = uuid.Nil

// SDSTKey identifies one (from, to) transition in the setup-time matrix.
type SDSTKey struct {
	From SurgeryTypeID // NoneSurgeryTypeID for the initial-setup row
	To   SurgeryTypeID
}

// SDSTMatrix is a process-wide snapshot of setup minutes keyed by
// transition. Missing entries default to 0. Values are non-negative;
// NewSDSTMatrix rejects negatives.
type SDSTMatrix struct {
	minutes map[SDSTKey]int
}

// NewSDSTMatrix builds a matrix from (from,to)->minutes entries. It
// returns an error if any value is negative.
func NewSDSTMatrix(entries map[SDSTKey]int) (SDSTMatrix, error) {
	m := SDSTMatrix{minutes: make(map[SDSTKey]int, len(entries))}
	for k, v := range entries {
		if v < 0 {
			return SDSTMatrix{}, ErrNegativeSDST
		}
		m.minutes[k] = v
	}
	return m, nil
}

// Lookup returns the setup minutes for the transition, and whether an
// explicit entry existed (false means the default applies).
func (m SDSTMatrix) Lookup(from, to SurgeryTypeID) (int, bool) {
	v, ok := m.minutes[SDSTKey{From: from, To: to}]
	return v, ok
}

// Entries returns a copy of the matrix's explicit transitions, used by
// repository implementations to persist or re-seed a snapshot.
func (m SDSTMatrix) Entries() map[SDSTKey]int {
	out := make(map[SDSTKey]int, len(m.minutes))
	for k, v := range m.minutes {
		out[k] = v
	}
	return out
}

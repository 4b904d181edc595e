package optimizer

import "github.com/schedcu/surgical-scheduler/internal/entity"

// MoveKind enumerates the Tabu search's neighborhood move operators
// (spec.md §4.4).
type MoveKind string

const (
	MoveSwap            MoveKind = "SWAP"
	MoveInsert          MoveKind = "INSERT"
	MoveShift           MoveKind = "SHIFT"
	MovePendingIn       MoveKind = "PENDING_IN"
	MoveRemoveToPending MoveKind = "REMOVE_TO_PENDING"
)

// moveOrder gives MoveKind a deterministic total order; it is the
// first key Fingerprint.Less compares.
var moveOrder = map[MoveKind]int{
	MoveSwap:            0,
	MoveInsert:          1,
	MoveShift:           2,
	MovePendingIn:       3,
	MoveRemoveToPending: 4,
}

// Fingerprint stably identifies a move so it can be recorded in and
// tested against tabu memory: (kind, surgeryId_a, surgeryId_b?,
// roomId_target) per spec.md §4.4.
type Fingerprint struct {
	Kind       MoveKind
	SurgeryA   entity.SurgeryID
	SurgeryB   *entity.SurgeryID
	RoomTarget entity.RoomID
}

// Key renders a fingerprint as a stable map key for tabu memory.
func (f Fingerprint) Key() string {
	b := string(f.Kind) + "|" + f.SurgeryA.String()
	if f.SurgeryB != nil {
		b += "|" + f.SurgeryB.String()
	} else {
		b += "|-"
	}
	b += "|" + f.RoomTarget.String()
	return b
}

// Less gives fingerprints a deterministic total order, used for the
// "prefer the move with the lower fingerprint" tie-break.
func (f Fingerprint) Less(other Fingerprint) bool {
	if moveOrder[f.Kind] != moveOrder[other.Kind] {
		return moveOrder[f.Kind] < moveOrder[other.Kind]
	}
	if c := compareIDs(f.SurgeryA, other.SurgeryA); c != 0 {
		return c < 0
	}
	bc := compareOptionalIDs(f.SurgeryB, other.SurgeryB)
	if bc != 0 {
		return bc < 0
	}
	return compareIDs(f.RoomTarget, other.RoomTarget) < 0
}

func compareIDs(a, b [16]byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func compareOptionalIDs(a, b *entity.SurgeryID) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return compareIDs(*a, *b)
	}
}

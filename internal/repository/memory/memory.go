// Package memory is an in-process Repository implementation used by
// tests and the one-shot CLI. It mirrors the locking and
// optimistic-concurrency shape of the Postgres implementation without
// any I/O.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

// Store is a thread-safe, in-memory Repository.
type Store struct {
	mu sync.RWMutex

	surgeries map[entity.SurgeryID]entity.Surgery
	rooms     map[entity.RoomID]entity.OperatingRoom
	staff     map[entity.StaffID]entity.Staff
	equipment map[entity.EquipmentID]entity.Equipment
	rules     []entity.Rule
	sdst      entity.SDSTMatrix

	assignments map[entity.SurgeryID]entity.Assignment
	version     int
}

// New builds an empty store; use the With* seed methods to populate
// fixtures before handing it to the engine.
func New() *Store {
	matrix, _ := entity.NewSDSTMatrix(nil)
	return &Store{
		surgeries:   make(map[entity.SurgeryID]entity.Surgery),
		rooms:       make(map[entity.RoomID]entity.OperatingRoom),
		staff:       make(map[entity.StaffID]entity.Staff),
		equipment:   make(map[entity.EquipmentID]entity.Equipment),
		assignments: make(map[entity.SurgeryID]entity.Assignment),
		sdst:        matrix,
		version:     0,
	}
}

// WithSurgeries seeds the pending-surgery catalog.
func (s *Store) WithSurgeries(surgeries ...entity.Surgery) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, surgery := range surgeries {
		s.surgeries[surgery.ID] = surgery
	}
	return s
}

// WithRooms seeds the room catalog.
func (s *Store) WithRooms(rooms ...entity.OperatingRoom) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, room := range rooms {
		s.rooms[room.ID] = room
	}
	return s
}

// WithStaff seeds the staff catalog.
func (s *Store) WithStaff(staff ...entity.Staff) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range staff {
		s.staff[st.ID] = st
	}
	return s
}

// WithEquipment seeds the equipment catalog.
func (s *Store) WithEquipment(equipment ...entity.Equipment) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, eq := range equipment {
		s.equipment[eq.ID] = eq
	}
	return s
}

// WithRules seeds the custom rule set.
func (s *Store) WithRules(rules ...entity.Rule) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, rules...)
	return s
}

// WithSDST seeds the setup-time matrix.
func (s *Store) WithSDST(matrix entity.SDSTMatrix) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sdst = matrix
	return s
}

// WithAssignments seeds already-scheduled assignments.
func (s *Store) WithAssignments(assignments ...entity.Assignment) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range assignments {
		s.assignments[a.SurgeryID] = a
	}
	return s
}

var _ repository.Repository = (*Store)(nil)

// ListPendingSurgeries returns every seeded surgery without a current
// assignment (callers filter by date range; the in-memory catalog has
// no calendar concept, so the range is currently unused but kept on
// the signature to match the repository contract).
func (s *Store) ListPendingSurgeries(_ context.Context, _ repository.DateRange) ([]entity.Surgery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Surgery
	for id, surgery := range s.surgeries {
		if _, assigned := s.assignments[id]; assigned {
			continue
		}
		out = append(out, surgery)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// ListRoomsWithSchedules returns every room paired with its current
// assignments.
func (s *Store) ListRoomsWithSchedules(_ context.Context, _ repository.DateRange) ([]repository.RoomSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.RoomSchedule
	for _, room := range s.rooms {
		var assignments []entity.Assignment
		for _, a := range s.assignments {
			if a.RoomID == room.ID {
				assignments = append(assignments, a)
			}
		}
		sort.Slice(assignments, func(i, j int) bool { return assignments[i].SetupStart.Before(assignments[j].SetupStart) })
		out = append(out, repository.RoomSchedule{Room: room, Assignments: assignments})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room.ID.String() < out[j].Room.ID.String() })
	return out, nil
}

func (s *Store) LoadSDSTSnapshot(_ context.Context) (entity.SDSTMatrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sdst, nil
}

func (s *Store) LoadRuleSet(_ context.Context) ([]entity.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Rule, len(s.rules))
	copy(out, s.rules)
	return out, nil
}

func (s *Store) LoadStaffAndEquipment(_ context.Context) ([]entity.Staff, []entity.Equipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	staff := make([]entity.Staff, 0, len(s.staff))
	for _, st := range s.staff {
		staff = append(staff, st)
	}
	equipment := make([]entity.Equipment, 0, len(s.equipment))
	for _, eq := range s.equipment {
		equipment = append(equipment, eq)
	}
	sort.Slice(staff, func(i, j int) bool { return staff[i].ID.String() < staff[j].ID.String() })
	sort.Slice(equipment, func(i, j int) bool { return equipment[i].ID.String() < equipment[j].ID.String() })
	return staff, equipment, nil
}

// CurrentVersion returns the store's current version token.
func (s *Store) CurrentVersion(_ context.Context, _ repository.DateRange) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionToken(), nil
}

// PersistAssignments applies changes under optimistic concurrency: the
// caller's version must match the store's current version, or a
// *entity.ConflictError is returned and nothing is written. An empty
// version skips the check.
func (s *Store) PersistAssignments(_ context.Context, changes repository.AssignmentChangeSet, _ repository.DateRange, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version != "" && version != s.versionToken() {
		return "", &entity.ConflictError{Resource: "assignments"}
	}

	for _, a := range changes.Upserts {
		s.assignments[a.SurgeryID] = a
	}
	for _, id := range changes.PendingSurgeryIDs {
		delete(s.assignments, id)
	}
	for _, id := range changes.RemovedSurgeryIDs {
		delete(s.assignments, id)
		delete(s.surgeries, id)
	}

	s.version++
	return s.versionToken(), nil
}

func (s *Store) versionToken() string {
	return strconv.Itoa(s.version)
}

func (s *Store) Health(_ context.Context) error {
	return nil
}

// String is a debug helper, not part of the Repository contract.
func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory.Store{surgeries=%d rooms=%d assignments=%d version=%d}", len(s.surgeries), len(s.rooms), len(s.assignments), s.version)
}

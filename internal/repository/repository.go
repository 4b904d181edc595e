// Package repository defines the collaborator contract the engine
// facade consumes but never implements (spec.md §6): loading the
// pending surgeries, room schedules, SDST matrix, rule set, and
// resource catalogs for a run, and persisting the resulting
// assignments under optimistic concurrency.
package repository

import (
	"context"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
)

// DateRange is a half-open [Start, End) calendar range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// RoomSchedule pairs a room with its already-scheduled assignments
// within the requested date range.
type RoomSchedule struct {
	Room        entity.OperatingRoom
	Assignments []entity.Assignment
}

// AssignmentChangeSet is the unit of persistence a facade run
// produces: assignments to upsert, surgeries to return to Pending,
// and surgeries to drop entirely (cancelled mid-run).
type AssignmentChangeSet struct {
	Upserts           []entity.Assignment
	PendingSurgeryIDs []entity.SurgeryID
	RemovedSurgeryIDs []entity.SurgeryID
}

// Repository is the data-access collaborator the engine depends on.
// Implementations live in internal/repository/memory (tests, the CLI)
// and internal/repository/postgres (the server).
type Repository interface {
	ListPendingSurgeries(ctx context.Context, r DateRange) ([]entity.Surgery, error)
	ListRoomsWithSchedules(ctx context.Context, r DateRange) ([]RoomSchedule, error)
	LoadSDSTSnapshot(ctx context.Context) (entity.SDSTMatrix, error)
	LoadRuleSet(ctx context.Context) ([]entity.Rule, error)
	LoadStaffAndEquipment(ctx context.Context) ([]entity.Staff, []entity.Equipment, error)

	// CurrentVersion returns the optimistic-concurrency token currently
	// in effect for dateRange, to be echoed back into PersistAssignments.
	CurrentVersion(ctx context.Context, dateRange DateRange) (string, error)

	// PersistAssignments commits changes atomically, gated by version
	// (the caller's last-seen optimistic-concurrency token for the date
	// range). Returns the new version on success, or a *ConflictError
	// if version is stale.
	PersistAssignments(ctx context.Context, changes AssignmentChangeSet, dateRange DateRange, version string) (newVersion string, err error)

	Health(ctx context.Context) error
}

// NotFoundError represents a record not found error.
type NotFoundError struct {
	ResourceType string
	ResourceID   string
}

func (e *NotFoundError) Error() string {
	return "not found: " + e.ResourceType + " " + e.ResourceID
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// ValidationError represents a request validation failure surfaced by
// the repository layer itself (e.g. an empty date range).
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

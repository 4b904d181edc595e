// Package entity holds the domain model: surgeries, rooms, staff,
// equipment, setup-time matrices, and the assignments that bind them
// into a schedule. Entities are explicit structs with enumerated
// status/urgency fields rather than untyped maps.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Type aliases for domain identities and temporal types.
type (
	SurgeryID     = uuid.UUID
	RoomID        = uuid.UUID
	StaffID       = uuid.UUID
	EquipmentID   = uuid.UUID
	SurgeonID     = uuid.UUID
	SurgeryTypeID = uuid.UUID
	RuleID        = string
	Date          = time.Time
)

// Now returns the current time in UTC. Centralized so callers never
// reach for time.Now() directly inside domain logic.
func Now() time.Time {
	return time.Now().UTC()
}

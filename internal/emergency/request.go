// Package emergency implements the urgent-surgery insertion strategy
// ladder (spec.md §4.5): try a gap in a primary room, then a backup
// room, then bumping a lower-priority surgery, then overtime, and
// finally fall back to manual review rather than silently dropping
// the request.
package emergency

import (
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
)

// Request describes an urgent surgery that must be worked into an
// existing schedule.
type Request struct {
	Surgery          entity.Surgery
	Priority         entity.EmergencyPriority
	Arrival          time.Time
	AllowBumping     bool
	AllowOvertime    bool
	AllowBackupRooms bool
}

// Result is the outcome of Insert, mirroring the wire contract in
// spec.md §6.
type Result struct {
	Success          bool
	SurgeryID        entity.SurgeryID
	AssignedRoomID   entity.RoomID
	ScheduledStart   time.Time
	ScheduledEnd     time.Time
	BumpedSurgeryIDs []entity.SurgeryID
	OvertimeMinutes  float64
	WaitMinutes      float64
	DisruptionScore  float64
	StrategyUsed     entity.InsertionStrategy
	Message          string
}

// maxWaitByPriority matches spec.md §4.5's stated defaults.
var maxWaitByPriority = map[entity.EmergencyPriority]time.Duration{
	entity.PriorityImmediate:  15 * time.Minute,
	entity.PriorityUrgent:     60 * time.Minute,
	entity.PrioritySemiUrgent: 240 * time.Minute,
	entity.PriorityScheduled:  1440 * time.Minute,
}

// MaxWait returns the configured maximum acceptable wait for priority,
// falling back to the Scheduled-tier default for unrecognized values.
func MaxWait(priority entity.EmergencyPriority) time.Duration {
	if d, ok := maxWaitByPriority[priority]; ok {
		return d
	}
	return maxWaitByPriority[entity.PriorityScheduled]
}

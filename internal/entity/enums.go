package entity

// Urgency is an ordered classification of how urgently a surgery must
// be scheduled. Higher values are more urgent; comparisons use the
// numeric ordering so "urgency desc" sorts are a plain integer compare.
type Urgency int

const (
	Scheduled Urgency = iota
	SemiUrgent
	Urgent
	Immediate
)

// String renders the urgency level for logs and wire payloads.
func (u Urgency) String() string {
	switch u {
	case Immediate:
		return "IMMEDIATE"
	case Urgent:
		return "URGENT"
	case SemiUrgent:
		return "SEMI_URGENT"
	case Scheduled:
		return "SCHEDULED"
	default:
		return "UNKNOWN"
	}
}

// SurgeryStatus tracks the lifecycle of a surgery within the engine.
type SurgeryStatus string

const (
	SurgeryStatusPending    SurgeryStatus = "PENDING"
	SurgeryStatusScheduled  SurgeryStatus = "SCHEDULED"
	SurgeryStatusInProgress SurgeryStatus = "IN_PROGRESS"
	SurgeryStatusCompleted  SurgeryStatus = "COMPLETED"
	SurgeryStatusCancelled  SurgeryStatus = "CANCELLED"
)

// RoomStatus tracks whether a room can currently receive placements.
type RoomStatus string

const (
	RoomStatusActive      RoomStatus = "ACTIVE"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
	RoomStatusInactive    RoomStatus = "INACTIVE"
)

// Severity is the fixed violation/rule severity enum from spec.md §6.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// rank orders severities so rules can be evaluated ascending-severity
// as required by spec.md §4.2 ("evaluated in ascending severity
// priority").
func (s Severity) rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	default:
		return -1
	}
}

// Less reports whether s sorts before other in ascending-severity order.
func (s Severity) Less(other Severity) bool {
	return s.rank() < other.rank()
}

// RuleKind classifies a custom feasibility rule.
type RuleKind string

const (
	RuleKindTimeWindow         RuleKind = "TIME_WINDOW"
	RuleKindResourceRestriction RuleKind = "RESOURCE_RESTRICTION"
	RuleKindDurationBound      RuleKind = "DURATION_BOUND"
	RuleKindForbiddenTransition RuleKind = "FORBIDDEN_TRANSITION"
	RuleKindCustom             RuleKind = "CUSTOM"
)

// ViolationKind names the specific built-in or custom check that failed.
type ViolationKind string

const (
	ViolationRoomAvailability      ViolationKind = "room_availability"
	ViolationRoomHours             ViolationKind = "room_hours"
	ViolationEquipmentAvailability ViolationKind = "equipment_availability"
	ViolationSurgeonAvailability   ViolationKind = "surgeon_availability"
	ViolationStaffAvailability     ViolationKind = "staff_availability"
	ViolationQualification         ViolationKind = "surgery_type_qualification"
	ViolationSDST                  ViolationKind = "sdst_respected"
	ViolationCustomRule            ViolationKind = "custom_rule"
)

// StaffRole is a required-staff tag (e.g. "CIRCULATOR", "SCRUB_TECH").
type StaffRole string

// EmergencyPriority is the priority scale used for emergency requests.
// It mirrors Urgency but is kept distinct per spec.md §4.5's own enum.
type EmergencyPriority int

const (
	PriorityScheduled EmergencyPriority = iota
	PrioritySemiUrgent
	PriorityUrgent
	PriorityImmediate
)

// AsUrgency maps an EmergencyPriority onto the Surgery Urgency scale.
func (p EmergencyPriority) AsUrgency() Urgency {
	return Urgency(p)
}

// InsertionStrategy records which rung of the emergency ladder resolved
// an insertion request.
type InsertionStrategy string

const (
	StrategyGap      InsertionStrategy = "gap"
	StrategyBackup   InsertionStrategy = "backup"
	StrategyBump     InsertionStrategy = "bump"
	StrategyOvertime InsertionStrategy = "overtime"
	StrategyManual   InsertionStrategy = "manual"
)

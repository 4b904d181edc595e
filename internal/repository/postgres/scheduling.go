package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/repository"
)

// Repository implements repository.Repository against the scheduling
// schema (surgeries, rooms, assignments, rules, staff, equipment,
// sdst_matrix, schedule_versions).
type Repository struct {
	db *sql.DB
}

// NewRepository builds a Repository bound to db.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

var _ repository.Repository = (*Repository)(nil)

func (r *Repository) Health(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListPendingSurgeries returns surgeries with status='PENDING' whose
// arrival (or, absent one, no arrival constraint) falls in the range.
func (r *Repository) ListPendingSurgeries(ctx context.Context, dateRange repository.DateRange) ([]entity.Surgery, error) {
	query := `
		SELECT id, surgery_type_id, duration_minutes, urgency, required_surgeon_id,
		       required_equipment, required_roles, status, arrival_time, max_wait_minutes
		FROM surgeries
		WHERE status = 'PENDING'
		  AND (arrival_time IS NULL OR (arrival_time >= $1 AND arrival_time < $2))
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, dateRange.Start, dateRange.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending surgeries: %w", err)
	}
	defer rows.Close()

	var out []entity.Surgery
	for rows.Next() {
		s, err := scanSurgery(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surgery: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSurgery(rows rowScanner) (entity.Surgery, error) {
	var s entity.Surgery
	var requiredEquipment, requiredRoles []string
	var requiredSurgeonID sql.NullString
	var arrivalTime sql.NullTime
	var maxWaitMinutes sql.NullInt64
	var status string

	if err := rows.Scan(
		&s.ID, &s.SurgeryTypeID, &s.DurationMinutes, &s.Urgency, &requiredSurgeonID,
		pq.Array(&requiredEquipment), pq.Array(&requiredRoles), &status, &arrivalTime, &maxWaitMinutes,
	); err != nil {
		return entity.Surgery{}, err
	}

	s.Status = entity.SurgeryStatus(status)
	s.RequiredEquipment = parseUUIDs(requiredEquipment)
	for _, role := range requiredRoles {
		s.RequiredRoles = append(s.RequiredRoles, entity.StaffRole(role))
	}
	if requiredSurgeonID.Valid {
		id, err := uuid.Parse(requiredSurgeonID.String)
		if err == nil {
			s.RequiredSurgeonID = &id
		}
	}
	if arrivalTime.Valid {
		t := arrivalTime.Time
		s.ArrivalTime = &t
	}
	if maxWaitMinutes.Valid {
		n := int(maxWaitMinutes.Int64)
		s.MaxWaitMinutes = &n
	}
	return s, nil
}

func parseUUIDs(raw []string) []uuid.UUID {
	var out []uuid.UUID
	for _, v := range raw {
		id, err := uuid.Parse(v)
		if err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ListRoomsWithSchedules returns every room, whatever its status,
// joined with its assignments inside the date range.
func (r *Repository) ListRoomsWithSchedules(ctx context.Context, dateRange repository.DateRange) ([]repository.RoomSchedule, error) {
	roomRows, err := r.db.QueryContext(ctx, `
		SELECT id, name, open_time, close_time, status, primary_service
		FROM rooms
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer roomRows.Close()

	var rooms []entity.OperatingRoom
	for roomRows.Next() {
		var room entity.OperatingRoom
		var status string
		if err := roomRows.Scan(&room.ID, &room.Name, &room.OpenTime, &room.CloseTime, &status, &room.PrimaryService); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		room.Status = entity.RoomStatus(status)
		rooms = append(rooms, room)
	}
	if err := roomRows.Err(); err != nil {
		return nil, err
	}

	assignmentRows, err := r.db.QueryContext(ctx, `
		SELECT surgery_id, room_id, surgery_type_id, setup_start, operation_start, end_time,
		       applied_setup_minutes, surgeon_id, required_equipment, required_roles
		FROM assignments
		WHERE setup_start < $2 AND end_time >= $1
		ORDER BY room_id, setup_start
	`, dateRange.Start, dateRange.End)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer assignmentRows.Close()

	byRoom := make(map[entity.RoomID][]entity.Assignment)
	for assignmentRows.Next() {
		a, err := scanAssignment(assignmentRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		byRoom[a.RoomID] = append(byRoom[a.RoomID], a)
	}
	if err := assignmentRows.Err(); err != nil {
		return nil, err
	}

	out := make([]repository.RoomSchedule, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, repository.RoomSchedule{Room: room, Assignments: byRoom[room.ID]})
	}
	return out, nil
}

func scanAssignment(rows rowScanner) (entity.Assignment, error) {
	var a entity.Assignment
	var requiredEquipment, requiredRoles []string
	var surgeonID sql.NullString

	if err := rows.Scan(
		&a.SurgeryID, &a.RoomID, &a.SurgeryTypeID, &a.SetupStart, &a.OperationStart, &a.End,
		&a.AppliedSetupMinutes, &surgeonID, pq.Array(&requiredEquipment), pq.Array(&requiredRoles),
	); err != nil {
		return entity.Assignment{}, err
	}
	a.RequiredEquipment = parseUUIDs(requiredEquipment)
	for _, role := range requiredRoles {
		a.RequiredRoles = append(a.RequiredRoles, entity.StaffRole(role))
	}
	if surgeonID.Valid {
		id, err := uuid.Parse(surgeonID.String)
		if err == nil {
			a.SurgeonID = &id
		}
	}
	return a, nil
}

// LoadSDSTSnapshot reads the whole setup-time matrix; uuid.Nil rows
// represent the NONE sentinel.
func (r *Repository) LoadSDSTSnapshot(ctx context.Context) (entity.SDSTMatrix, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT from_type_id, to_type_id, minutes FROM sdst_matrix`)
	if err != nil {
		return entity.SDSTMatrix{}, fmt.Errorf("failed to load sdst matrix: %w", err)
	}
	defer rows.Close()

	entries := make(map[entity.SDSTKey]int)
	for rows.Next() {
		var key entity.SDSTKey
		var minutes int
		if err := rows.Scan(&key.From, &key.To, &minutes); err != nil {
			return entity.SDSTMatrix{}, fmt.Errorf("failed to scan sdst entry: %w", err)
		}
		entries[key] = minutes
	}
	if err := rows.Err(); err != nil {
		return entity.SDSTMatrix{}, err
	}
	return entity.NewSDSTMatrix(entries)
}

// LoadRuleSet reads rules and their keyed parameters, reassembling
// each Rule's Params map from the side table.
func (r *Repository) LoadRuleSet(ctx context.Context) ([]entity.Rule, error) {
	ruleRows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, severity, scope_surgery_types, scope_rooms, scope_surgeons
		FROM rules
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer ruleRows.Close()

	rules := make(map[entity.RuleID]*entity.Rule)
	var order []entity.RuleID
	for ruleRows.Next() {
		var id, kind, severity string
		var scopeSurgeryTypes, scopeRooms, scopeSurgeons []string
		if err := ruleRows.Scan(&id, &kind, &severity, pq.Array(&scopeSurgeryTypes), pq.Array(&scopeRooms), pq.Array(&scopeSurgeons)); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rule := &entity.Rule{
			ID: id, Kind: entity.RuleKind(kind), Severity: entity.Severity(severity),
			Scope:  entity.RuleScope{SurgeryTypes: parseUUIDs(scopeSurgeryTypes), Rooms: parseUUIDs(scopeRooms), Surgeons: parseUUIDs(scopeSurgeons)},
			Params: make(map[string]entity.Param),
		}
		rules[id] = rule
		order = append(order, id)
	}
	if err := ruleRows.Err(); err != nil {
		return nil, err
	}

	paramRows, err := r.db.QueryContext(ctx, `
		SELECT rule_id, key, kind, number_value, text_value, interval_start, interval_end, id_list
		FROM rule_params
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rule params: %w", err)
	}
	defer paramRows.Close()

	for paramRows.Next() {
		var ruleID, key, kind string
		var number sql.NullFloat64
		var text sql.NullString
		var intervalStart, intervalEnd sql.NullInt64
		var idList []string
		if err := paramRows.Scan(&ruleID, &key, &kind, &number, &text, &intervalStart, &intervalEnd, pq.Array(&idList)); err != nil {
			return nil, fmt.Errorf("failed to scan rule param: %w", err)
		}
		rule, ok := rules[ruleID]
		if !ok {
			continue
		}
		rule.Params[key] = entity.Param{
			Kind: entity.ParamKind(kind), Number: number.Float64, Text: text.String,
			IntervalStart: int(intervalStart.Int64), IntervalEnd: int(intervalEnd.Int64), IDs: idList,
		}
	}
	if err := paramRows.Err(); err != nil {
		return nil, err
	}

	out := make([]entity.Rule, 0, len(order))
	for _, id := range order {
		out = append(out, *rules[id])
	}
	return out, nil
}

// LoadStaffAndEquipment reads both resource catalogs in a single pass
// each; maintenance/availability windows are stored as parallel
// start/end timestamp arrays.
func (r *Repository) LoadStaffAndEquipment(ctx context.Context) ([]entity.Staff, []entity.Equipment, error) {
	staffRows, err := r.db.QueryContext(ctx, `
		SELECT id, role, qualifications, availability_starts, availability_ends, daily_hour_cap
		FROM staff
		ORDER BY id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list staff: %w", err)
	}
	defer staffRows.Close()

	var staff []entity.Staff
	for staffRows.Next() {
		var st entity.Staff
		var role string
		var qualifications, starts, ends []string
		if err := staffRows.Scan(&st.ID, &role, pq.Array(&qualifications), pq.Array(&starts), pq.Array(&ends), &st.DailyHourCap); err != nil {
			return nil, nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		st.Role = entity.StaffRole(role)
		st.Qualifications = parseUUIDs(qualifications)
		st.Availability = zipWindows(starts, ends)
		staff = append(staff, st)
	}
	if err := staffRows.Err(); err != nil {
		return nil, nil, err
	}

	equipRows, err := r.db.QueryContext(ctx, `
		SELECT id, type, available, concurrent_cap, bound_room_id, maintenance_starts, maintenance_ends
		FROM equipment
		ORDER BY id
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer equipRows.Close()

	var equipment []entity.Equipment
	for equipRows.Next() {
		var eq entity.Equipment
		var boundRoomID sql.NullString
		var starts, ends []string
		if err := equipRows.Scan(&eq.ID, &eq.Type, &eq.Available, &eq.ConcurrentCap, &boundRoomID, pq.Array(&starts), pq.Array(&ends)); err != nil {
			return nil, nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		if boundRoomID.Valid {
			id, err := uuid.Parse(boundRoomID.String)
			if err == nil {
				eq.BoundRoomID = &id
			}
		}
		eq.Maintenance = zipWindows(starts, ends)
		equipment = append(equipment, eq)
	}
	return staff, equipment, equipRows.Err()
}

// zipWindows pairs parallel start/end ISO-8601 columns into windows;
// rows with an unparseable timestamp are skipped rather than aborting
// the whole load.
func zipWindows(starts, ends []string) []entity.TimeWindow {
	n := len(starts)
	if len(ends) < n {
		n = len(ends)
	}
	var out []entity.TimeWindow
	for i := 0; i < n; i++ {
		start, err1 := time.Parse(time.RFC3339, starts[i])
		end, err2 := time.Parse(time.RFC3339, ends[i])
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, entity.TimeWindow{Start: start, End: end})
	}
	return out
}

// CurrentVersion reads the schedule_versions row for dateRange,
// treating a missing row as version 0 (not yet written).
func (r *Repository) CurrentVersion(ctx context.Context, dateRange repository.DateRange) (string, error) {
	var version int
	err := r.db.QueryRowContext(ctx, `
		SELECT version FROM schedule_versions WHERE range_start = $1 AND range_end = $2
	`, dateRange.Start, dateRange.End).Scan(&version)
	if err == sql.ErrNoRows {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read schedule version: %w", err)
	}
	return fmt.Sprintf("%d", version), nil
}

// PersistAssignments applies changes in a single transaction, gated by
// the schedule_versions row for dateRange: the caller's version must
// still be current or the write is rejected as a conflict.
func (r *Repository) PersistAssignments(ctx context.Context, changes repository.AssignmentChangeSet, dateRange repository.DateRange, version string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var currentVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT version FROM schedule_versions WHERE range_start = $1 AND range_end = $2 FOR UPDATE
	`, dateRange.Start, dateRange.End).Scan(&currentVersion)
	if err == sql.ErrNoRows {
		currentVersion = 0
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO schedule_versions (range_start, range_end, version) VALUES ($1, $2, 0)
		`, dateRange.Start, dateRange.End); err != nil {
			return "", fmt.Errorf("failed to initialize schedule version: %w", err)
		}
	} else if err != nil {
		return "", fmt.Errorf("failed to read schedule version: %w", err)
	}

	if version != "" && version != fmt.Sprintf("%d", currentVersion) {
		return "", &entity.ConflictError{Resource: "assignments"}
	}

	for _, a := range changes.Upserts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments (surgery_id, room_id, surgery_type_id, setup_start, operation_start, end_time,
			                          applied_setup_minutes, surgeon_id, required_equipment, required_roles)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (surgery_id) DO UPDATE SET
				room_id = EXCLUDED.room_id, surgery_type_id = EXCLUDED.surgery_type_id,
				setup_start = EXCLUDED.setup_start, operation_start = EXCLUDED.operation_start,
				end_time = EXCLUDED.end_time, applied_setup_minutes = EXCLUDED.applied_setup_minutes,
				surgeon_id = EXCLUDED.surgeon_id, required_equipment = EXCLUDED.required_equipment,
				required_roles = EXCLUDED.required_roles
		`, a.SurgeryID, a.RoomID, a.SurgeryTypeID, a.SetupStart, a.OperationStart, a.End,
			a.AppliedSetupMinutes, nullableSurgeon(a.SurgeonID), pq.Array(uuidsToStrings(a.RequiredEquipment)), pq.Array(rolesToStrings(a.RequiredRoles)),
		); err != nil {
			return "", fmt.Errorf("failed to upsert assignment: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE surgeries SET status = 'SCHEDULED' WHERE id = $1`, a.SurgeryID); err != nil {
			return "", fmt.Errorf("failed to update surgery status: %w", err)
		}
	}
	for _, id := range changes.PendingSurgeryIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE surgery_id = $1`, id); err != nil {
			return "", fmt.Errorf("failed to clear assignment: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE surgeries SET status = 'PENDING' WHERE id = $1`, id); err != nil {
			return "", fmt.Errorf("failed to revert surgery to pending: %w", err)
		}
	}
	for _, id := range changes.RemovedSurgeryIDs {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE surgery_id = $1`, id); err != nil {
			return "", fmt.Errorf("failed to delete assignment: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE surgeries SET status = 'CANCELLED' WHERE id = $1`, id); err != nil {
			return "", fmt.Errorf("failed to cancel surgery: %w", err)
		}
	}

	newVersion := currentVersion + 1
	if _, err := tx.ExecContext(ctx, `
		UPDATE schedule_versions SET version = $3 WHERE range_start = $1 AND range_end = $2
	`, dateRange.Start, dateRange.End, newVersion); err != nil {
		return "", fmt.Errorf("failed to bump schedule version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit assignment changes: %w", err)
	}
	return fmt.Sprintf("%d", newVersion), nil
}

func nullableSurgeon(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func uuidsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func rolesToStrings(roles []entity.StaffRole) []string {
	out := make([]string, len(roles))
	for i, role := range roles {
		out[i] = string(role)
	}
	return out
}

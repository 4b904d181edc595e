package emergency

import (
	"context"
	"sort"
	"time"

	"github.com/schedcu/surgical-scheduler/internal/entity"
	"github.com/schedcu/surgical-scheduler/internal/feasibility"
	"github.com/schedcu/surgical-scheduler/internal/optimizer"
	"github.com/schedcu/surgical-scheduler/internal/scheduling"
	"github.com/schedcu/surgical-scheduler/internal/sdst"
)

// Handler resolves Requests against a run snapshot by walking the
// strategy ladder in spec.md §4.5.
type Handler struct {
	resolver      *sdst.Resolver
	weights       DisruptionWeights
	bumpOptimizer optimizer.Config
}

// New builds a Handler. bumpOptimizer bounds the cascading reschedule
// attempted after a bump (spec.md §4.5 step 3) — callers should pass a
// narrow iteration budget, not the full optimize-run config.
func New(resolver *sdst.Resolver, weights DisruptionWeights, bumpOptimizer optimizer.Config) *Handler {
	return &Handler{resolver: resolver, weights: weights, bumpOptimizer: bumpOptimizer}
}

// Insert attempts to place req into schedule, trying each rung of the
// ladder in order and returning the first success. On full failure it
// returns a manual-review Result with the schedule unchanged, never
// silently dropping the request.
func (h *Handler) Insert(ctx context.Context, req Request, snapshot entity.RunSnapshot, schedule entity.Schedule) (Result, entity.Schedule) {
	snapshot = withSurgery(snapshot, req.Surgery)
	maxWait := MaxWait(req.Priority)
	totalScheduled := len(schedule.Assignments)
	dailyCapacity := dailyCapacityMinutes(snapshot.Rooms)

	policy := feasibility.DefaultPolicy()
	checker := feasibility.New(h.resolver, policy)

	if placement, ok := h.findGap(primaryRooms(snapshot, req.Surgery.SurgeryTypeID), req, snapshot, schedule, checker); ok {
		result, updated := h.commit(entity.StrategyGap, placement, nil, 0, req, schedule, maxWait, totalScheduled, dailyCapacity)
		return result, updated
	}

	if req.AllowBackupRooms {
		if placement, ok := h.findGap(backupRooms(snapshot, req.Surgery.SurgeryTypeID), req, snapshot, schedule, checker); ok {
			result, updated := h.commit(entity.StrategyBackup, placement, nil, 0, req, schedule, maxWait, totalScheduled, dailyCapacity)
			return result, updated
		}
	}

	if req.AllowBumping {
		if result, updated, ok := h.tryBump(ctx, req, snapshot, schedule, checker, maxWait, totalScheduled, dailyCapacity); ok {
			return result, updated
		}
	}

	if req.AllowOvertime {
		overtimeChecker := feasibility.New(h.resolver, feasibility.Policy{AllowOvertime: true, EquipmentUsesSetupWindow: policy.EquipmentUsesSetupWindow})
		if placement, ok := h.findGap(snapshot.Rooms, req, snapshot, schedule, overtimeChecker); ok {
			room, _ := snapshot.RoomByID(placement.roomID)
			overtime := 0.0
			if placement.end.After(room.CloseTime) {
				overtime = placement.end.Sub(room.CloseTime).Minutes()
			}
			result, updated := h.commit(entity.StrategyOvertime, placement, nil, overtime, req, schedule, maxWait, totalScheduled, dailyCapacity)
			return result, updated
		}
	}

	return Result{
		Success:      false,
		SurgeryID:    req.Surgery.ID,
		StrategyUsed: entity.StrategyManual,
		Message:      "no feasible placement found within maxWait across gap, backup, bump, and overtime strategies",
	}, schedule
}

// gapPlacement is an internal candidate found by findGap.
type gapPlacement struct {
	roomID           entity.RoomID
	setupStart       time.Time
	operationStart   time.Time
	end              time.Time
	appliedSetup     int
}

// findGap searches rooms (already filtered to the eligible set) for
// the earliest feasible slot, preferring the earliest setup start and
// breaking ties by lowest room id.
func (h *Handler) findGap(rooms []entity.OperatingRoom, req Request, snapshot entity.RunSnapshot, schedule entity.Schedule, checker *feasibility.Checker) (gapPlacement, bool) {
	sorted := make([]entity.OperatingRoom, len(rooms))
	copy(sorted, rooms)
	sort.Slice(sorted, func(i, j int) bool { return idLess(sorted[i].ID, sorted[j].ID) })

	var best gapPlacement
	found := false
	for _, room := range sorted {
		setupStart, applied, ok := scheduling.NextAvailable(room, req.Surgery, snapshot, schedule, h.resolver, checker)
		if !ok {
			continue
		}
		operationStart := setupStart.Add(time.Duration(applied) * time.Minute)
		end := operationStart.Add(time.Duration(req.Surgery.DurationMinutes) * time.Minute)
		candidate := gapPlacement{roomID: room.ID, setupStart: setupStart, operationStart: operationStart, end: end, appliedSetup: applied}

		if !found || setupStart.Before(best.setupStart) || (setupStart.Equal(best.setupStart) && idLess(room.ID, best.roomID)) {
			best, found = candidate, true
		}
	}
	if !found {
		return gapPlacement{}, false
	}
	waitMinutes := best.setupStart.Sub(req.Arrival).Minutes()
	if waitMinutes < 0 {
		waitMinutes = 0
	}
	if time.Duration(waitMinutes*float64(time.Minute)) > MaxWait(req.Priority) {
		return gapPlacement{}, false
	}
	return best, true
}

// tryBump implements strategy ladder step 3: find a strictly
// lower-priority scheduled surgery whose removal opens a viable slot,
// then attempt a bounded cascading reschedule of the bumped surgery.
// A failed cascading reschedule rolls back entirely rather than
// leaving a partially-applied change (spec.md §7).
func (h *Handler) tryBump(ctx context.Context, req Request, snapshot entity.RunSnapshot, schedule entity.Schedule, checker *feasibility.Checker, maxWait time.Duration, totalScheduled int, dailyCapacity float64) (Result, entity.Schedule, bool) {
	candidates := make([]entity.Assignment, len(schedule.Assignments))
	copy(candidates, schedule.Assignments)
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RoomID != candidates[j].RoomID {
			return idLess(candidates[i].RoomID, candidates[j].RoomID)
		}
		return candidates[i].SetupStart.Before(candidates[j].SetupStart)
	})

	for _, bumpedAssignment := range candidates {
		bumpedSurgery, ok := findSurgery(snapshot, bumpedAssignment.SurgeryID)
		if !ok || bumpedSurgery.Urgency >= req.Priority.AsUrgency() {
			continue
		}
		room, ok := snapshot.RoomByID(bumpedAssignment.RoomID)
		if !ok {
			continue
		}

		withoutBumped := schedule.WithPending(bumpedSurgery)
		withoutBumped = recomputeRoom(withoutBumped, snapshot, h.resolver, room.ID)

		setupStart, applied, found := scheduling.NextAvailable(room, req.Surgery, snapshot, withoutBumped, h.resolver, checker)
		if !found {
			continue
		}
		waitMinutes := setupStart.Sub(req.Arrival).Minutes()
		if waitMinutes < 0 {
			waitMinutes = 0
		}
		if time.Duration(waitMinutes*float64(time.Minute)) > maxWait {
			continue
		}

		operationStart := setupStart.Add(time.Duration(applied) * time.Minute)
		end := operationStart.Add(time.Duration(req.Surgery.DurationMinutes) * time.Minute)
		emergencyAssignment := entity.Assignment{
			SurgeryID: req.Surgery.ID, RoomID: room.ID, SurgeryTypeID: req.Surgery.SurgeryTypeID,
			SetupStart: setupStart, AppliedSetupMinutes: applied, OperationStart: operationStart, End: end,
			SurgeonID: req.Surgery.RequiredSurgeonID, RequiredEquipment: req.Surgery.RequiredEquipment, RequiredRoles: req.Surgery.RequiredRoles,
		}
		tentative := withoutBumped.WithAssignment(emergencyAssignment)

		rescheduleResult := optimizer.Run(ctx, tentative, snapshot, h.resolver, checker, h.bumpOptimizer)
		if _, placed := rescheduleResult.Best.Find(bumpedSurgery.ID); !placed {
			continue
		}

		placement := gapPlacement{roomID: room.ID, setupStart: setupStart, operationStart: operationStart, end: end, appliedSetup: applied}
		result, updated := h.commit(entity.StrategyBump, placement, []entity.SurgeryID{bumpedSurgery.ID}, 0, req, rescheduleResult.Best, maxWait, totalScheduled, dailyCapacity)
		return result, updated, true
	}
	return Result{}, schedule, false
}

func (h *Handler) commit(strategy entity.InsertionStrategy, placement gapPlacement, bumped []entity.SurgeryID, overtimeMinutes float64, req Request, schedule entity.Schedule, maxWait time.Duration, totalScheduled int, dailyCapacity float64) (Result, entity.Schedule) {
	var updated entity.Schedule
	if strategy == entity.StrategyBump {
		// schedule already contains the emergency assignment and the
		// rescheduled bumped surgery (see tryBump).
		updated = schedule
	} else {
		assignment := entity.Assignment{
			SurgeryID: req.Surgery.ID, RoomID: placement.roomID, SurgeryTypeID: req.Surgery.SurgeryTypeID,
			SetupStart: placement.setupStart, AppliedSetupMinutes: placement.appliedSetup,
			OperationStart: placement.operationStart, End: placement.end,
			SurgeonID: req.Surgery.RequiredSurgeonID, RequiredEquipment: req.Surgery.RequiredEquipment, RequiredRoles: req.Surgery.RequiredRoles,
		}
		updated = schedule.WithAssignment(assignment)
	}

	waitMinutes := placement.setupStart.Sub(req.Arrival).Minutes()
	if waitMinutes < 0 {
		waitMinutes = 0
	}

	disruption := score(h.weights, len(bumped), totalScheduled, overtimeMinutes, dailyCapacity, waitMinutes, maxWait)

	return Result{
		Success:          true,
		SurgeryID:        req.Surgery.ID,
		AssignedRoomID:   placement.roomID,
		ScheduledStart:   placement.operationStart,
		ScheduledEnd:     placement.end,
		BumpedSurgeryIDs: bumped,
		OvertimeMinutes:  overtimeMinutes,
		WaitMinutes:      waitMinutes,
		DisruptionScore:  disruption,
		StrategyUsed:     strategy,
	}, updated
}

func primaryRooms(snapshot entity.RunSnapshot, surgeryTypeID entity.SurgeryTypeID) []entity.OperatingRoom {
	code := ""
	if st, ok := snapshot.SurgeryTypes[surgeryTypeID]; ok {
		code = st.Code
	}
	var out []entity.OperatingRoom
	for _, r := range snapshot.Rooms {
		if r.PrimaryService == "" || r.PrimaryService == code {
			out = append(out, r)
		}
	}
	return out
}

func backupRooms(snapshot entity.RunSnapshot, surgeryTypeID entity.SurgeryTypeID) []entity.OperatingRoom {
	code := ""
	if st, ok := snapshot.SurgeryTypes[surgeryTypeID]; ok {
		code = st.Code
	}
	var out []entity.OperatingRoom
	for _, r := range snapshot.Rooms {
		if r.PrimaryService != "" && r.PrimaryService != code {
			out = append(out, r)
		}
	}
	return out
}

func dailyCapacityMinutes(rooms []entity.OperatingRoom) float64 {
	total := 0.0
	for _, r := range rooms {
		total += r.CloseTime.Sub(r.OpenTime).Minutes()
	}
	return total
}

func findSurgery(snapshot entity.RunSnapshot, id entity.SurgeryID) (entity.Surgery, bool) {
	for _, s := range snapshot.Surgeries {
		if s.ID == id {
			return s, true
		}
	}
	return entity.Surgery{}, false
}

func withSurgery(snapshot entity.RunSnapshot, surgery entity.Surgery) entity.RunSnapshot {
	if _, ok := findSurgery(snapshot, surgery.ID); ok {
		return snapshot
	}
	out := snapshot
	out.Surgeries = append(append([]entity.Surgery{}, snapshot.Surgeries...), surgery)
	return out
}

func recomputeRoom(schedule entity.Schedule, snapshot entity.RunSnapshot, resolver *sdst.Resolver, roomID entity.RoomID) entity.Schedule {
	room, ok := snapshot.RoomByID(roomID)
	if !ok {
		return schedule
	}
	updated := scheduling.RecomputeRoom(room, schedule.InRoom(roomID), scheduling.Durations(snapshot.Surgeries), resolver)
	return schedule.ReplaceRoom(roomID, updated)
}

func idLess(a, b [16]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

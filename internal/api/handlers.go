package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/schedcu/surgical-scheduler/internal/emergency"
	"github.com/schedcu/surgical-scheduler/internal/engine"
	"github.com/schedcu/surgical-scheduler/internal/entity"
)

// Handlers implements every HTTP endpoint against an engine.Engine.
type Handlers struct {
	engine *engine.Engine
}

// Health reports the API process is serving requests.
func (h *Handlers) Health(c echo.Context) error {
	return SuccessResponse(c, http.StatusOK, map[string]string{"status": "up"})
}

// optimizeRequestBody mirrors spec.md §6's OptimizeRequest.
type optimizeRequestBody struct {
	DateRangeStart time.Time `json:"dateRangeStart"`
	DateRangeEnd   time.Time `json:"dateRangeEnd"`
	MaxIterations  *int      `json:"maxIterations,omitempty"`
	TabuTenure     *int      `json:"tabuTenure,omitempty"`
}

// Optimize runs a bounded Tabu optimize over the requested date range.
func (h *Handlers) Optimize(c echo.Context) error {
	var body optimizeRequestBody
	if err := c.Bind(&body); err != nil {
		return ErrorJSONResponse(c, http.StatusBadRequest, "invalid_input", err.Error())
	}

	resp, err := h.engine.Optimize(c.Request().Context(), engine.OptimizeRequest{
		DateRangeStart: body.DateRangeStart,
		DateRangeEnd:   body.DateRangeEnd,
		MaxIterations:  body.MaxIterations,
		TabuTenure:     body.TabuTenure,
	})
	if err != nil {
		status, code := statusForError(err)
		return ErrorJSONResponse(c, status, code, err.Error())
	}
	return SuccessResponse(c, http.StatusOK, resp)
}

// emergencyRequestBody mirrors spec.md §4.5's EmergencyRequest.
type emergencyRequestBody struct {
	Surgery          entity.Surgery             `json:"surgery"`
	Priority         entity.EmergencyPriority   `json:"priority"`
	Arrival          time.Time                  `json:"arrival"`
	AllowBumping     bool                       `json:"allowBumping"`
	AllowOvertime    bool                       `json:"allowOvertime"`
	AllowBackupRooms bool                       `json:"allowBackupRooms"`
}

// InsertEmergency runs the emergency strategy ladder for an urgent
// surgery.
func (h *Handlers) InsertEmergency(c echo.Context) error {
	var body emergencyRequestBody
	if err := c.Bind(&body); err != nil {
		return ErrorJSONResponse(c, http.StatusBadRequest, "invalid_input", err.Error())
	}

	result, err := h.engine.InsertEmergency(c.Request().Context(), emergency.Request{
		Surgery:          body.Surgery,
		Priority:         body.Priority,
		Arrival:          body.Arrival,
		AllowBumping:     body.AllowBumping,
		AllowOvertime:    body.AllowOvertime,
		AllowBackupRooms: body.AllowBackupRooms,
	})
	if err != nil {
		status, code := statusForError(err)
		return ErrorJSONResponse(c, status, code, err.Error())
	}
	return SuccessResponse(c, http.StatusOK, result)
}

// feasibilityRequestBody mirrors spec.md §6's FeasibilityRequest.
type feasibilityRequestBody struct {
	SurgeryID uuid.UUID `json:"surgeryId"`
	RoomID    uuid.UUID `json:"roomId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// CheckFeasibility evaluates a hypothetical placement without
// mutating anything.
func (h *Handlers) CheckFeasibility(c echo.Context) error {
	var body feasibilityRequestBody
	if err := c.Bind(&body); err != nil {
		return ErrorJSONResponse(c, http.StatusBadRequest, "invalid_input", err.Error())
	}

	verdict, err := h.engine.CheckFeasibility(c.Request().Context(), engine.FeasibilityRequest{
		SurgeryID: body.SurgeryID,
		RoomID:    body.RoomID,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		status, code := statusForError(err)
		return ErrorJSONResponse(c, status, code, err.Error())
	}
	return SuccessResponse(c, http.StatusOK, verdict)
}

// ValidateSchedule reports every constraint violation on the
// requested date's schedule.
func (h *Handlers) ValidateSchedule(c echo.Context) error {
	dateParam := c.QueryParam("date")
	if dateParam == "" {
		return ErrorJSONResponse(c, http.StatusBadRequest, "invalid_input", "date query parameter required (YYYY-MM-DD)")
	}
	date, err := time.Parse("2006-01-02", dateParam)
	if err != nil {
		return ErrorJSONResponse(c, http.StatusBadRequest, "invalid_input", "date must be formatted YYYY-MM-DD")
	}

	report, err := h.engine.ValidateSchedule(c.Request().Context(), date)
	if err != nil {
		status, code := statusForError(err)
		return ErrorJSONResponse(c, status, code, err.Error())
	}
	return SuccessResponse(c, http.StatusOK, report)
}

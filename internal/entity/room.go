package entity

import "time"

// OperatingRoom is a schedulable room with a daily operational window.
// Owned by the resource catalog; read-only to the engine within a run.
type OperatingRoom struct {
	ID             RoomID
	Name           string
	OpenTime       time.Time // time-of-day component is used; callers normalize to the scheduling date
	CloseTime      time.Time
	Status         RoomStatus
	PrimaryService string
	Maintenance    []TimeWindow
}

// TimeWindow is a half-open [Start, End) interval.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether w overlaps the half-open interval [start, end).
func (w TimeWindow) Overlaps(start, end time.Time) bool {
	return start.Before(w.End) && w.Start.Before(end)
}

// IsAvailableDuring reports whether the room is Active and has no
// maintenance window overlapping [start, end).
func (r OperatingRoom) IsAvailableDuring(start, end time.Time) bool {
	if r.Status != RoomStatusActive {
		return false
	}
	for _, m := range r.Maintenance {
		if m.Overlaps(start, end) {
			return false
		}
	}
	return true
}

// WithinHours reports whether [start, end) lies within the room's
// operational window on the day of start.
func (r OperatingRoom) WithinHours(start, end time.Time) bool {
	open := sameDayAt(start, r.OpenTime)
	close := sameDayAt(start, r.CloseTime)
	return !start.Before(open) && !end.After(close)
}

// sameDayAt returns the time-of-day of ref applied to day's calendar date.
func sameDayAt(day, ref time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, ref.Hour(), ref.Minute(), ref.Second(), 0, day.Location())
}

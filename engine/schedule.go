package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// lastMinute is the highest representable minute of a day (23:59).
// Hours past midnight are stored as a second range on the next day;
// a single range never wraps.
const lastMinute = 23*60 + 59

// TimeRange is a half-open window [Start, End) within a single day,
// both bounds expressed as minutes since midnight.
type TimeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether the given minute-of-day falls inside the range.
// The end bound is exclusive: a range ending at 18:00 excludes exactly 18:00.
func (r TimeRange) Contains(minute int) bool {
	return minute >= r.Start && minute < r.End
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d–%02d:%02d", r.Start/60, r.Start%60, r.End/60, r.End%60)
}

// DaySchedule is one weekday's open/closed flag plus its time ranges.
type DaySchedule struct {
	Open   bool        `json:"open"`
	Ranges []TimeRange `json:"ranges,omitempty"`
}

// ScheduleError reports a malformed day schedule. It is returned at the
// settings-update boundary; IsOpenAt never corrects bad input silently.
type ScheduleError struct {
	Day    time.Weekday
	Reason string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule for %s: %s", e.Day, e.Reason)
}

// ValidateDay checks a single day's schedule: closed days carry no ranges,
// ranges stay within 00:00–23:59, start before end, sorted, no overlaps.
func ValidateDay(day time.Weekday, s DaySchedule) error {
	if !s.Open {
		if len(s.Ranges) != 0 {
			return &ScheduleError{Day: day, Reason: "closed day must not have time ranges"}
		}
		return nil
	}

	for _, r := range s.Ranges {
		if r.Start < 0 || r.End > lastMinute {
			return &ScheduleError{Day: day, Reason: fmt.Sprintf("range %s is outside 00:00–23:59", r)}
		}
		if r.Start >= r.End {
			return &ScheduleError{Day: day, Reason: fmt.Sprintf("range %s must start before it ends", r)}
		}
	}

	if !sort.SliceIsSorted(s.Ranges, func(i, j int) bool { return s.Ranges[i].Start < s.Ranges[j].Start }) {
		return &ScheduleError{Day: day, Reason: "ranges must be sorted by start time"}
	}

	for i := 1; i < len(s.Ranges); i++ {
		if s.Ranges[i].Start < s.Ranges[i-1].End {
			return &ScheduleError{Day: day, Reason: fmt.Sprintf("ranges %s and %s overlap", s.Ranges[i-1], s.Ranges[i])}
		}
	}

	return nil
}

// WeeklyAvailability maps every weekday to its schedule and answers
// "are we open right now". Missing days evaluate as closed.
type WeeklyAvailability map[time.Weekday]DaySchedule

// NewWeeklyAvailability builds a validated seven-day availability.
// Days absent from the input default to closed.
func NewWeeklyAvailability(days map[time.Weekday]DaySchedule) (WeeklyAvailability, error) {
	w := make(WeeklyAvailability, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		s := days[d]
		if err := ValidateDay(d, s); err != nil {
			return nil, err
		}
		w[d] = s
	}
	return w, nil
}

// IsOpenAt reports whether the business is open at the given instant.
// The caller supplies the instant already in business-local time.
// A closed day never reports open, regardless of any ranges it carries.
func (w WeeklyAvailability) IsOpenAt(t time.Time) bool {
	day, ok := w[t.Weekday()]
	if !ok || !day.Open {
		return false
	}

	minute := t.Hour()*60 + t.Minute()
	for _, r := range day.Ranges {
		if r.Contains(minute) {
			return true
		}
	}
	return false
}

// DaySummary renders the given instant's weekday schedule for display,
// e.g. "09:00–13:00, 16:00–20:00", or "Cerrado" when the day is closed.
func (w WeeklyAvailability) DaySummary(t time.Time) string {
	day, ok := w[t.Weekday()]
	if !ok || !day.Open || len(day.Ranges) == 0 {
		return "Cerrado"
	}

	parts := make([]string, len(day.Ranges))
	for i, r := range day.Ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

package entities

import (
	"fmt"
	"time"
)

// DateLayout is the ISO date format used to key proposal buckets
const DateLayout = "2006-01-02"

// DefaultScheduleDays is the number of calendar days considered when none is given
const DefaultScheduleDays = 5

// WorkWeekConfig is the user-chosen input for one scheduling run
type WorkWeekConfig struct {
	WeekStart        time.Time `json:"week_start"`
	SelectedWorkDays []int     `json:"selected_work_days"` // 1=Monday .. 5=Friday
	ScheduleDays     int       `json:"schedule_days"`
	CapacityOverride int       `json:"capacity_override,omitempty"` // >0 replaces computed capacity
}

// NewWorkWeekConfig creates a validated WorkWeekConfig. A zero scheduleDays is kept as zero.
func NewWorkWeekConfig(weekStart time.Time, workDays []int, scheduleDays int) (*WorkWeekConfig, error) {
	cfg := &WorkWeekConfig{
		WeekStart:        NormalizeDate(weekStart),
		SelectedWorkDays: append([]int(nil), workDays...),
		ScheduleDays:     scheduleDays,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the week configuration
func (w WorkWeekConfig) Validate() error {
	if w.WeekStart.IsZero() {
		return &ValidationError{Field: "week_start", Reason: "cannot be empty"}
	}
	if w.WeekStart.Weekday() != time.Monday {
		return &ValidationError{
			Field:  "week_start",
			Reason: fmt.Sprintf("must be a Monday, got %s", w.WeekStart.Weekday()),
		}
	}
	if w.ScheduleDays < 0 {
		return &ValidationError{
			Field:  "schedule_days",
			Reason: fmt.Sprintf("cannot be negative, got %d", w.ScheduleDays),
		}
	}
	if w.CapacityOverride < 0 {
		return &ValidationError{
			Field:  "capacity_override",
			Reason: fmt.Sprintf("cannot be negative, got %d", w.CapacityOverride),
		}
	}
	seen := make(map[int]bool, len(w.SelectedWorkDays))
	for _, d := range w.SelectedWorkDays {
		if d < 1 || d > 5 {
			return &ValidationError{
				Field:  "selected_work_days",
				Reason: fmt.Sprintf("work day must be between 1 and 5, got %d", d),
			}
		}
		if seen[d] {
			return &ValidationError{
				Field:  "selected_work_days",
				Reason: fmt.Sprintf("duplicate work day %d", d),
			}
		}
		seen[d] = true
	}
	return nil
}

// IsWorkDay reports whether the date's weekday is selected
func (w WorkWeekConfig) IsWorkDay(date time.Time) bool {
	wd := int(date.Weekday())
	for _, d := range w.SelectedWorkDays {
		if d == wd {
			return true
		}
	}
	return false
}

// CalendarDates returns every date in WeekStart .. WeekStart+ScheduleDays-1
func (w WorkWeekConfig) CalendarDates() []time.Time {
	start := NormalizeDate(w.WeekStart)
	dates := make([]time.Time, 0, w.ScheduleDays)
	for i := 0; i < w.ScheduleDays; i++ {
		dates = append(dates, start.AddDate(0, 0, i))
	}
	return dates
}

// WorkDates returns the calendar dates that fall on selected work days, in date order
func (w WorkWeekConfig) WorkDates() []time.Time {
	var dates []time.Time
	for _, d := range w.CalendarDates() {
		if w.IsWorkDay(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// Contains reports whether date lies inside the scheduling window
func (w WorkWeekConfig) Contains(date time.Time) bool {
	start := NormalizeDate(w.WeekStart)
	end := start.AddDate(0, 0, w.ScheduleDays)
	d := NormalizeDate(date)
	return !d.Before(start) && d.Before(end)
}

// WeekKey identifies the scheduling week for locking
func (w WorkWeekConfig) WeekKey() string {
	return NormalizeDate(w.WeekStart).Format(DateLayout)
}

// NormalizeDate truncates t to midnight UTC of its calendar date
func NormalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date key
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// MondayOf returns the Monday starting the week containing t
func MondayOf(t time.Time) time.Time {
	d := NormalizeDate(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

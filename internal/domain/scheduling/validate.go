package scheduling

import (
	"fmt"

	"dental-scheduling/internal/domain/entity"
)

// ClinicBounds are the clinic-wide opening hours every doctor's schedule must
// fall within.
type ClinicBounds struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// NewClinicBounds parses "HH:MM" opening and closing times.
func NewClinicBounds(open, close string) (ClinicBounds, error) {
	o, err := ParseTimeOfDay(open)
	if err != nil {
		return ClinicBounds{}, err
	}
	c, err := ParseTimeOfDay(close)
	if err != nil {
		return ClinicBounds{}, err
	}
	if o >= c {
		return ClinicBounds{}, fmt.Errorf("%w: %s-%s", ErrInvalidDayWindow, open, close)
	}
	return ClinicBounds{Open: o, Close: c}, nil
}

// ValidateDay checks that an available day has well-formed, ordered hours.
// Clinic bounds are not applied.
func ValidateDay(day entity.DaySchedule) error {
	_, err := parseWindow(day)
	return err
}

// ValidateWeeklySchedule checks that every key names a weekday and that every
// available day has well-formed hours inside the clinic bounds. Closed days
// are not inspected. Days are checked Monday first and the first problem is
// returned.
func ValidateWeeklySchedule(ws *entity.WeeklySchedule, bounds ClinicBounds) error {
	if ws == nil {
		return ErrMissingSchedule
	}
	for key := range ws.Days {
		if _, ok := entity.ParseWeekdayKey(key); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWeekday, key)
		}
	}
	for _, d := range entity.Weekdays {
		day, ok := ws.Day(d)
		if !ok {
			continue
		}
		w, err := parseWindow(day)
		if err != nil {
			return fmt.Errorf("%s: %w", entity.WeekdayKey(d), err)
		}
		if w.open && (w.start < bounds.Open || w.end > bounds.Close) {
			return fmt.Errorf("%s: %w: %s-%s not within %s-%s", entity.WeekdayKey(d), ErrOutsideClinicBounds,
				day.StartTime, day.EndTime, bounds.Open, bounds.Close)
		}
	}
	return nil
}

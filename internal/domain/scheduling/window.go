package scheduling

import (
	"fmt"

	"dental-scheduling/internal/domain/entity"
)

// window is a parsed DaySchedule. A closed day has open == false and no hours.
type window struct {
	open       bool
	start, end TimeOfDay
}

func parseWindow(day entity.DaySchedule) (window, error) {
	if !day.IsAvailable {
		return window{}, nil
	}
	start, err := ParseTimeOfDay(day.StartTime)
	if err != nil {
		return window{}, fmt.Errorf("start time: %w", err)
	}
	end, err := ParseTimeOfDay(day.EndTime)
	if err != nil {
		return window{}, fmt.Errorf("end time: %w", err)
	}
	if start >= end {
		return window{}, fmt.Errorf("%w: %s-%s", ErrInvalidDayWindow, day.StartTime, day.EndTime)
	}
	return window{open: true, start: start, end: end}, nil
}

// fits reports whether [start, start+duration) lies inside the window.
func (w window) fits(start, duration TimeOfDay) bool {
	return w.open && start >= w.start && start <= w.end-duration
}

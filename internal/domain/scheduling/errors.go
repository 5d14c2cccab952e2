package scheduling

import "errors"

var (
	ErrInvalidTimeFormat   = errors.New("invalid time format, use HH:MM")
	ErrInvalidDuration     = errors.New("appointment duration must be greater than zero")
	ErrInvalidGranularity  = errors.New("slot granularity must be greater than zero")
	ErrInvalidDayWindow    = errors.New("start time must be before end time")
	ErrOutsideClinicBounds = errors.New("hours fall outside clinic opening hours")
	ErrUnknownWeekday      = errors.New("unknown weekday")
	ErrMissingSchedule     = errors.New("weekly schedule is required")
)

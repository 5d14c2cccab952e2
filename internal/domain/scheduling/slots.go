package scheduling

import (
	"fmt"
	"math"
	"time"

	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// SlotReason explains why a slot is or is not bookable.
type SlotReason string

const (
	SlotReasonNone                     SlotReason = "none"
	SlotReasonOutsideSchedule          SlotReason = "outside_schedule"
	SlotReasonConflictsWithAppointment SlotReason = "conflicts_with_appointment"
)

// TimeSlot is a candidate appointment start on a given day. It is derived on
// every request and never stored.
type TimeSlot struct {
	Time                     string // HH:MM
	Start                    time.Time
	End                      time.Time
	Available                bool
	Reason                   SlotReason
	ConflictingAppointmentID *uuid.UUID
}

// SlotRequest carries everything needed to compute slots for one doctor and day.
type SlotRequest struct {
	// Schedule is the doctor's stored weekly schedule; nil when none exists.
	Schedule *entity.WeeklySchedule
	// Fallback applies when Schedule is nil or lacks the requested weekday.
	Fallback FallbackPolicy
	// Date selects the calendar day, interpreted in Date's location.
	Date               time.Time
	DurationMinutes    int
	GranularityMinutes int
	// Appointments are the doctor's bookings around Date. Statuses that do not
	// block time are ignored.
	Appointments []entity.Appointment
}

func (r SlotRequest) validate() error {
	if r.DurationMinutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDuration, r.DurationMinutes)
	}
	if r.GranularityMinutes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidGranularity, r.GranularityMinutes)
	}
	return nil
}

func (r SlotRequest) window() (window, error) {
	weekday := r.Date.Weekday()
	w, err := parseWindow(ResolveDay(r.Schedule, r.Fallback, weekday))
	if err != nil {
		return window{}, fmt.Errorf("%s: %w", entity.WeekdayKey(weekday), err)
	}
	return w, nil
}

// maxDurationMinutes is the longest duration representable as a time.Duration.
const maxDurationMinutes = int(math.MaxInt64 / int64(time.Minute))

// end returns start plus the requested duration, saturating instead of
// wrapping for durations no day could hold.
func (r SlotRequest) end(start time.Time) time.Time {
	minutes := r.DurationMinutes
	if minutes > maxDurationMinutes {
		minutes = maxDurationMinutes
	}
	return start.Add(time.Duration(minutes) * time.Minute)
}

func (r SlotRequest) slotAt(at TimeOfDay) TimeSlot {
	start := at.On(r.Date)
	end := r.end(start)
	slot := TimeSlot{
		Time:      at.String(),
		Start:     start,
		End:       end,
		Available: true,
		Reason:    SlotReasonNone,
	}
	if conflict := FindConflict(start, end, r.Appointments); conflict != nil {
		id := conflict.ID
		slot.Available = false
		slot.Reason = SlotReasonConflictsWithAppointment
		slot.ConflictingAppointmentID = &id
	}
	return slot
}

// GenerateSlots lists the candidate start times for the requested day, every
// GranularityMinutes from the day's start time, keeping only starts whose
// appointment would end no later than the day's end time. A closed day yields
// an empty, non-nil slice. Whether the date is in the past is left to the
// caller.
func GenerateSlots(req SlotRequest) ([]TimeSlot, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	w, err := req.window()
	if err != nil {
		return nil, err
	}

	slots := []TimeSlot{}
	duration := TimeOfDay(req.DurationMinutes)
	if !w.open || duration > w.end-w.start {
		return slots, nil
	}

	// bounds are compared by subtraction so huge inputs cannot wrap
	last := w.end - duration
	step := TimeOfDay(req.GranularityMinutes)
	for at := w.start; ; at += step {
		slots = append(slots, req.slotAt(at))
		if step > last-at {
			break
		}
	}
	return slots, nil
}

// EvaluateSlot checks a single chosen start time on req.Date before booking.
// The start need not be aligned to the granularity grid. The returned slot is
// unavailable with SlotReasonOutsideSchedule when the day is closed or the
// appointment would not fit inside the working hours, and with
// SlotReasonConflictsWithAppointment when it overlaps a booking.
func EvaluateSlot(req SlotRequest, at TimeOfDay) (TimeSlot, error) {
	if err := req.validate(); err != nil {
		return TimeSlot{}, err
	}
	w, err := req.window()
	if err != nil {
		return TimeSlot{}, err
	}

	if !w.fits(at, TimeOfDay(req.DurationMinutes)) {
		start := at.On(req.Date)
		return TimeSlot{
			Time:   at.String(),
			Start:  start,
			End:    req.end(start),
			Reason: SlotReasonOutsideSchedule,
		}, nil
	}
	return req.slotAt(at), nil
}

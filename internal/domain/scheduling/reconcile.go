package scheduling

import (
	"fmt"
	"sort"
	"time"

	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// Reasons reported on a ScheduleConflict.
const (
	ConflictReasonDayUnavailable = "day no longer available"
	ConflictReasonOutsideHours   = "outside new hours"
)

// ScheduleConflict is a booked appointment that a proposed weekly schedule
// would leave outside the doctor's working hours.
type ScheduleConflict struct {
	AppointmentID   uuid.UUID
	PatientName     string
	StartAt         time.Time
	AppointmentDate string // YYYY-MM-DD in the clinic location
	AppointmentTime string // HH:MM in the clinic location
	Duration        int    // minutes
	Reason          string
}

// ReconcileScheduleChange finds the appointments that the proposed schedule
// would orphan. futureAppointments should hold the doctor's upcoming bookings;
// appointments that do not block time, or belong to another doctor, are
// skipped. Weekdays are resolved in loc (UTC when nil). A weekday missing from
// the proposal counts as closed. Conflicts are ordered by start time.
//
// Nothing is modified: deciding whether to save despite conflicts is up to
// the caller.
func ReconcileScheduleChange(proposed *entity.WeeklySchedule, futureAppointments []entity.Appointment, loc *time.Location) ([]ScheduleConflict, error) {
	if proposed == nil {
		return nil, ErrMissingSchedule
	}
	if loc == nil {
		loc = time.UTC
	}

	windows := make(map[time.Weekday]window, len(entity.Weekdays))
	for _, d := range entity.Weekdays {
		day, _ := proposed.Day(d)
		w, err := parseWindow(day)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entity.WeekdayKey(d), err)
		}
		windows[d] = w
	}

	conflicts := []ScheduleConflict{}
	for i := range futureAppointments {
		appt := &futureAppointments[i]
		if !appt.BlocksTime() {
			continue
		}
		if proposed.DoctorID != uuid.Nil && appt.DoctorID != proposed.DoctorID {
			continue
		}

		local := appt.StartAt.In(loc)
		w := windows[local.Weekday()]

		var reason string
		switch {
		case !w.open:
			reason = ConflictReasonDayUnavailable
		case !w.fits(TimeOfDayOf(local), TimeOfDay(appt.DurationMinutes)):
			reason = ConflictReasonOutsideHours
		default:
			continue
		}

		conflicts = append(conflicts, ScheduleConflict{
			AppointmentID:   appt.ID,
			PatientName:     appt.PatientName(),
			StartAt:         appt.StartAt,
			AppointmentDate: local.Format("2006-01-02"),
			AppointmentTime: TimeOfDayOf(local).String(),
			Duration:        appt.DurationMinutes,
			Reason:          reason,
		})
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartAt.Before(conflicts[j].StartAt)
	})
	return conflicts, nil
}

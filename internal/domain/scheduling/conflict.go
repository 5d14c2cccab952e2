package scheduling

import (
	"time"

	"dental-scheduling/internal/domain/entity"
)

// Overlaps reports whether the candidate interval [candidateStart, candidateEnd)
// shares any time with the existing interval [existingStart, existingEnd).
// Intervals that only touch (one ends exactly when the other starts) do not
// overlap, so back-to-back appointments are allowed.
func Overlaps(candidateStart, candidateEnd, existingStart, existingEnd time.Time) bool {
	return candidateStart.Before(existingEnd) && candidateEnd.After(existingStart)
}

// FindConflict returns the first appointment that blocks time and overlaps the
// candidate interval, or nil. appointments is expected to hold a single
// doctor's bookings. When several appointments conflict, which one is returned
// is unspecified.
func FindConflict(candidateStart, candidateEnd time.Time, appointments []entity.Appointment) *entity.Appointment {
	for i := range appointments {
		appt := &appointments[i]
		if !appt.BlocksTime() {
			continue
		}
		if Overlaps(candidateStart, candidateEnd, appt.StartAt, appt.EndAt()) {
			return appt
		}
	}
	return nil
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for querying a doctor's appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	DoctorID uuid.UUID
	// From and To bound a half-open window [From, To). An appointment matches when
	// its own interval overlaps the window. Zero values leave that side open.
	From time.Time
	To   time.Time
	// OnlyBlocking drops cancelled and no-show appointments
	OnlyBlocking bool
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	// PatientID is required when staff book on a patient's behalf; patients book for themselves
	PatientID       *uuid.UUID `json:"patient_id" validate:"omitempty"`
	Date            string     `json:"date" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	StartTime       string     `json:"start_time" validate:"required,hhmm"`          // Format: HH:MM
	DurationMinutes int        `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
	Notes           string     `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=scheduled confirmed in_progress completed cancelled no_show"`
}

type AppointmentListRequest struct {
	From string `validate:"omitempty,datetime=2006-01-02"` // Format: YYYY-MM-DD
	To   string `validate:"omitempty,datetime=2006-01-02"` // Format: YYYY-MM-DD, inclusive
}

type SlotListRequest struct {
	Date            string `validate:"required,datetime=2006-01-02"`
	DurationMinutes int    `validate:"omitempty,min=5,max=480"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	DoctorName      string     `json:"doctor_name,omitempty"`
	PatientID       uuid.UUID  `json:"patient_id"`
	PatientName     string     `json:"patient_name,omitempty"`
	Date            string     `json:"date"`       // clinic time, YYYY-MM-DD
	StartTime       string     `json:"start_time"` // clinic time, HH:MM
	EndTime         string     `json:"end_time"`   // clinic time, HH:MM
	StartAt         time.Time  `json:"start_at"`
	EndAt           time.Time  `json:"end_at"`
	DurationMinutes int        `json:"duration_minutes"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotResponse struct {
	Time                     string     `json:"time"` // HH:MM
	StartAt                  time.Time  `json:"start_at"`
	EndAt                    time.Time  `json:"end_at"`
	Available                bool       `json:"available"`
	Reason                   string     `json:"reason"`
	ConflictingAppointmentID *uuid.UUID `json:"conflicting_appointment_id,omitempty"`
}

type SlotListResponse struct {
	DoctorID           uuid.UUID      `json:"doctor_id"`
	Date               string         `json:"date"`
	DurationMinutes    int            `json:"duration_minutes"`
	GranularityMinutes int            `json:"granularity_minutes"`
	Slots              []SlotResponse `json:"slots"`
	Total              int            `json:"total"`
	Available          int            `json:"available"`
}

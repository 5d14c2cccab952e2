package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type DayScheduleRequest struct {
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time" validate:"required_if=IsAvailable true,omitempty,hhmm"` // Format: HH:MM
	EndTime     string `json:"end_time" validate:"required_if=IsAvailable true,omitempty,hhmm"`   // Format: HH:MM
}

// WeeklyScheduleRequest replaces a doctor's weekly schedule. Days is keyed by
// lowercase weekday ("monday" ... "sunday"); weekdays left out are closed.
type WeeklyScheduleRequest struct {
	Days  map[string]DayScheduleRequest `json:"days" validate:"required,dive"`
	Force bool                          `json:"force"`
}

// Response DTOs

type DayScheduleResponse struct {
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
}

type WeeklyScheduleResponse struct {
	DoctorID       uuid.UUID                      `json:"doctor_id"`
	Days           map[string]DayScheduleResponse `json:"days"`
	IsDefault      bool                           `json:"is_default"`
	FallbackPolicy string                         `json:"fallback_policy,omitempty"`
	UpdatedBy      *uuid.UUID                     `json:"updated_by,omitempty"`
	UpdatedAt      *time.Time                     `json:"updated_at,omitempty"`
}

type ScheduleConflictResponse struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	PatientName     string    `json:"patient_name"`
	AppointmentDate string    `json:"appointment_date"` // Format: YYYY-MM-DD
	AppointmentTime string    `json:"appointment_time"` // Format: HH:MM
	Duration        int       `json:"duration"`
	Reason          string    `json:"reason"`
}

type SchedulePreviewResponse struct {
	Conflicts []ScheduleConflictResponse `json:"conflicts"`
	Total     int                        `json:"total"`
}

type SaveWeeklyScheduleResponse struct {
	Schedule            WeeklyScheduleResponse     `json:"schedule"`
	OverriddenConflicts []ScheduleConflictResponse `json:"overridden_conflicts"`
}

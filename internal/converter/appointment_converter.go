package converter

import (
	"time"

	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/scheduling"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Date and times are rendered in loc, the clinic time zone.
func AppointmentToResponse(appointment *entity.Appointment, loc *time.Location) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	start := appointment.StartAt.In(loc)
	end := appointment.EndAt().In(loc)

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		DoctorID:        appointment.DoctorID,
		DoctorName:      appointment.Doctor.FullName(),
		PatientID:       appointment.PatientID,
		PatientName:     appointment.PatientName(),
		Date:            start.Format("2006-01-02"),
		StartTime:       scheduling.TimeOfDayOf(start).String(),
		EndTime:         scheduling.TimeOfDayOf(end).String(),
		StartAt:         start,
		EndAt:           end,
		DurationMinutes: appointment.DurationMinutes,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		CreatedBy:       appointment.CreatedBy,
		CreatedAt:       appointment.CreatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment, loc *time.Location) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i], loc)
	}
	return responses
}

// SlotsToResponses converts generated TimeSlots to SlotResponse DTOs
func SlotsToResponses(slots []scheduling.TimeSlot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, len(slots))
	for i, slot := range slots {
		responses[i] = dto.SlotResponse{
			Time:                     slot.Time,
			StartAt:                  slot.Start,
			EndAt:                    slot.End,
			Available:                slot.Available,
			Reason:                   string(slot.Reason),
			ConflictingAppointmentID: slot.ConflictingAppointmentID,
		}
	}
	return responses
}

package converter

import (
	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/scheduling"

	"github.com/google/uuid"
)

// WeeklyScheduleRequestToEntity converts a WeeklyScheduleRequest DTO to a WeeklySchedule entity.
// Every weekday is stored; those left out of the request are closed.
func WeeklyScheduleRequestToEntity(doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) *entity.WeeklySchedule {
	days := make(entity.WeeklyDays, len(entity.Weekdays))
	for _, d := range entity.Weekdays {
		days[entity.WeekdayKey(d)] = entity.DaySchedule{IsAvailable: false}
	}
	for key, day := range req.Days {
		stored := entity.DaySchedule{IsAvailable: day.IsAvailable}
		if day.IsAvailable {
			stored.StartTime = day.StartTime
			stored.EndTime = day.EndTime
		}
		days[key] = stored
	}
	return &entity.WeeklySchedule{
		DoctorID: doctorID,
		Days:     days,
	}
}

// WeeklyScheduleToResponse converts a stored WeeklySchedule entity to WeeklyScheduleResponse DTO.
// Weekdays missing from the stored schedule are filled from the fallback policy.
func WeeklyScheduleToResponse(schedule *entity.WeeklySchedule, fallback scheduling.FallbackPolicy) *dto.WeeklyScheduleResponse {
	if schedule == nil {
		return nil
	}

	response := &dto.WeeklyScheduleResponse{
		DoctorID:  schedule.DoctorID,
		Days:      make(map[string]dto.DayScheduleResponse, len(entity.Weekdays)),
		UpdatedBy: schedule.UpdatedBy,
	}
	for _, d := range entity.Weekdays {
		response.Days[entity.WeekdayKey(d)] = dayToResponse(scheduling.ResolveDay(schedule, fallback, d))
	}
	if !schedule.UpdatedAt.IsZero() {
		updatedAt := schedule.UpdatedAt
		response.UpdatedAt = &updatedAt
	}

	return response
}

// FallbackScheduleToResponse renders the fallback policy for a doctor without a stored schedule
func FallbackScheduleToResponse(doctorID uuid.UUID, fallback scheduling.FallbackPolicy) *dto.WeeklyScheduleResponse {
	response := WeeklyScheduleToResponse(fallback.WeeklySchedule(doctorID), fallback)
	response.IsDefault = true
	response.FallbackPolicy = fallback.Name
	return response
}

// ScheduleConflictsToResponses converts reconciler output to ScheduleConflictResponse DTOs
func ScheduleConflictsToResponses(conflicts []scheduling.ScheduleConflict) []dto.ScheduleConflictResponse {
	responses := make([]dto.ScheduleConflictResponse, len(conflicts))
	for i, c := range conflicts {
		responses[i] = dto.ScheduleConflictResponse{
			AppointmentID:   c.AppointmentID,
			PatientName:     c.PatientName,
			AppointmentDate: c.AppointmentDate,
			AppointmentTime: c.AppointmentTime,
			Duration:        c.Duration,
			Reason:          c.Reason,
		}
	}
	return responses
}

func dayToResponse(day entity.DaySchedule) dto.DayScheduleResponse {
	if !day.IsAvailable {
		return dto.DayScheduleResponse{IsAvailable: false}
	}
	return dto.DayScheduleResponse{
		IsAvailable: true,
		StartTime:   day.StartTime,
		EndTime:     day.EndTime,
	}
}

package scheduling

import (
	"time"

	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

// WeekdayFallbackPolicyName identifies the Monday to Friday default policy.
const WeekdayFallbackPolicyName = "weekdays"

// FallbackPolicy supplies working hours for doctors that have no stored weekly
// schedule, and for weekdays missing from a stored schedule. Weekdays absent
// from Days are closed.
type FallbackPolicy struct {
	Name string
	Days map[time.Weekday]entity.DaySchedule
}

// NewWeekdayFallbackPolicy opens Monday through Friday between start and end
// and closes weekends.
func NewWeekdayFallbackPolicy(start, end TimeOfDay) FallbackPolicy {
	days := make(map[time.Weekday]entity.DaySchedule, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		days[d] = entity.DaySchedule{
			IsAvailable: true,
			StartTime:   start.String(),
			EndTime:     end.String(),
		}
	}
	return FallbackPolicy{Name: WeekdayFallbackPolicyName, Days: days}
}

// Day returns the policy's hours for a weekday.
func (p FallbackPolicy) Day(d time.Weekday) entity.DaySchedule {
	return p.Days[d]
}

// WeeklySchedule renders the policy as a full seven-day schedule for a doctor.
func (p FallbackPolicy) WeeklySchedule(doctorID uuid.UUID) *entity.WeeklySchedule {
	days := make(entity.WeeklyDays, len(entity.Weekdays))
	for _, d := range entity.Weekdays {
		days[entity.WeekdayKey(d)] = p.Day(d)
	}
	return &entity.WeeklySchedule{DoctorID: doctorID, Days: days}
}

// ResolveDay picks the hours that apply on a weekday: the stored schedule's
// entry when present, otherwise the fallback policy's.
func ResolveDay(schedule *entity.WeeklySchedule, fallback FallbackPolicy, d time.Weekday) entity.DaySchedule {
	if day, ok := schedule.Day(d); ok {
		return day
	}
	return fallback.Day(d)
}

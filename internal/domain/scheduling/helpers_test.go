package scheduling

import (
	"time"
	_ "time/tzdata"

	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	doctorID = uuid.MustParse("7b3f6c0e-52a4-4d8e-9a51-3c2f0c7d9e10")
	// 2026-10-19 is a Monday, 2026-10-25 the following Sunday.
	monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	sunday = time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)
)

func at(day time.Time, hhmm string) time.Time {
	return MustParseTimeOfDay(hhmm).On(day)
}

func appt(start time.Time, minutes int, status entity.AppointmentStatus) entity.Appointment {
	return entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		PatientID:       uuid.New(),
		StartAt:         start,
		DurationMinutes: minutes,
		Status:          status,
	}
}

func weekly(days map[time.Weekday]entity.DaySchedule) *entity.WeeklySchedule {
	ws := &entity.WeeklySchedule{DoctorID: doctorID, Days: entity.WeeklyDays{}}
	for d, day := range days {
		ws.Days[entity.WeekdayKey(d)] = day
	}
	return ws
}

func open(start, end string) entity.DaySchedule {
	return entity.DaySchedule{IsAvailable: true, StartTime: start, EndTime: end}
}

func closed() entity.DaySchedule {
	return entity.DaySchedule{IsAvailable: false}
}

func slotTimes(slots []TimeSlot) []string {
	times := make([]string, len(slots))
	for i, s := range slots {
		times[i] = s.Time
	}
	return times
}

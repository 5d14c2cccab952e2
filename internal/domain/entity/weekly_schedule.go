package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Weekdays lists the schedule keys in display order (Monday first)
var Weekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// WeekdayKey returns the storage key for a weekday, e.g. "monday"
func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekdayKey is the inverse of WeekdayKey
func ParseWeekdayKey(key string) (time.Weekday, bool) {
	for _, d := range Weekdays {
		if WeekdayKey(d) == key {
			return d, true
		}
	}
	return 0, false
}

// DaySchedule is a doctor's recurring availability for one weekday
type DaySchedule struct {
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time"` // Format: HH:MM
	EndTime     string `json:"end_time"`   // Format: HH:MM
}

// WeeklyDays maps weekday keys to their DaySchedule, stored as JSONB
type WeeklyDays map[string]DaySchedule

// Value returns json value, implement driver.Valuer interface
func (d WeeklyDays) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan scan value into WeeklyDays, implements sql.Scanner interface
func (d *WeeklyDays) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal weekly days value:", value))
	}

	result := WeeklyDays{}
	err := json.Unmarshal(bytes, &result)
	*d = result
	return err
}

// WeeklySchedule is a doctor's recurring per-weekday availability template.
// One row per doctor; saves overwrite it, it is never deleted.
type WeeklySchedule struct {
	DoctorID  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"doctor_id"`
	Days      WeeklyDays `gorm:"type:jsonb;not null" json:"days"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor DoctorProfile `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (WeeklySchedule) TableName() string {
	return "doctor_weekly_schedules"
}

// Day returns the schedule stored for a weekday, if any
func (s *WeeklySchedule) Day(d time.Weekday) (DaySchedule, bool) {
	if s == nil || s.Days == nil {
		return DaySchedule{}, false
	}
	day, ok := s.Days[WeekdayKey(d)]
	return day, ok
}

package repository

import (
	"dental-scheduling/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WeeklyScheduleRepository interface {
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.WeeklySchedule, error)
	Upsert(db *gorm.DB, schedule *entity.WeeklySchedule) error
}

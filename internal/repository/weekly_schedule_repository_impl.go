package repository

import (
	"errors"

	"dental-scheduling/internal/domain/entity"
	domainRepo "dental-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type weeklyScheduleRepository struct{}

func NewWeeklyScheduleRepository() domainRepo.WeeklyScheduleRepository {
	return &weeklyScheduleRepository{}
}

func (r *weeklyScheduleRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.WeeklySchedule, error) {
	var schedule entity.WeeklySchedule
	err := db.Where("doctor_id = ?", doctorID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// Upsert inserts the doctor's schedule or overwrites the stored days.
// There is at most one row per doctor.
func (r *weeklyScheduleRepository) Upsert(db *gorm.DB, schedule *entity.WeeklySchedule) error {
	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doctor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"days", "updated_by", "updated_at"}),
		}).
		Create(schedule).Error
}

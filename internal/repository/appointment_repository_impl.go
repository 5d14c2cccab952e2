package repository

import (
	"errors"

	"dental-scheduling/internal/domain/entity"
	domainRepo "dental-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit(clause.Associations).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Patient.User").Preload("Doctor.User").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

// FindByFilter returns the doctor's appointments whose interval overlaps
// [filter.From, filter.To), ordered by start.
func (r *appointmentRepository) FindByFilter(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Preload("Patient.User").Where("doctor_id = ?", filter.DoctorID)

	if !filter.To.IsZero() {
		query = query.Where("start_at < ?", filter.To)
	}
	if !filter.From.IsZero() {
		query = query.Where("start_at + duration_minutes * interval '1 minute' > ?", filter.From)
	}
	if filter.OnlyBlocking {
		query = query.Where("status NOT IN ?", []entity.AppointmentStatus{
			entity.AppointmentStatusCancelled,
			entity.AppointmentStatusNoShow,
		})
	}

	err := query.Order("start_at ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpdateStatus moves an appointment from one status to another ONLY if it is still in `from`.
// Returns affected rows: 1 = success, 0 = status changed concurrently.
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"dental-scheduling/internal/converter"
	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/repository"
	"dental-scheduling/internal/domain/scheduling"
	"dental-scheduling/internal/observability/metrics"
	"dental-scheduling/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrScheduleForbidden    = errors.New("only the doctor or an administrator can change this schedule")
	ErrScheduleHasConflicts = errors.New("schedule change conflicts with booked appointments")
	ErrInvalidSchedule      = errors.New("invalid weekly schedule")
)

// ScheduleConflictError is returned by SaveWeeklySchedule when the new hours
// would orphan booked appointments and the save was not forced.
type ScheduleConflictError struct {
	Conflicts []dto.ScheduleConflictResponse
}

func (e *ScheduleConflictError) Error() string {
	return fmt.Sprintf("%s: %d appointment(s) affected", ErrScheduleHasConflicts, len(e.Conflicts))
}

func (e *ScheduleConflictError) Unwrap() error {
	return ErrScheduleHasConflicts
}

type WeeklyScheduleUsecase interface {
	GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	PreviewScheduleChange(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SchedulePreviewResponse, error)
	SaveWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SaveWeeklyScheduleResponse, error)
}

type weeklyScheduleUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	opts              SchedulingOptions
	scheduleRepo      repository.WeeklyScheduleRepository
	appointmentRepo   repository.AppointmentRepository
	doctorProfileRepo repository.DoctorProfileRepository
	auditService      service.AuditService
	metrics           *metrics.SchedulingMetrics
}

func NewWeeklyScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	opts SchedulingOptions,
	scheduleRepo repository.WeeklyScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	auditService service.AuditService,
	schedulingMetrics *metrics.SchedulingMetrics,
) WeeklyScheduleUsecase {
	return &weeklyScheduleUsecase{
		db:                db,
		log:               log,
		opts:              opts,
		scheduleRepo:      scheduleRepo,
		appointmentRepo:   appointmentRepo,
		doctorProfileRepo: doctorProfileRepo,
		auditService:      auditService,
		metrics:           schedulingMetrics,
	}
}

// GetWeeklySchedule returns the stored schedule, or the fallback policy when
// the doctor has none
func (u *weeklyScheduleUsecase) GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	if err := u.ensureDoctor(u.db.WithContext(ctx), doctorID); err != nil {
		return nil, err
	}

	schedule, err := u.scheduleRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if schedule == nil {
		return converter.FallbackScheduleToResponse(doctorID, u.opts.Fallback), nil
	}

	return converter.WeeklyScheduleToResponse(schedule, u.opts.Fallback), nil
}

// PreviewScheduleChange lists the booked appointments the proposed schedule
// would leave outside working hours. Nothing is saved.
func (u *weeklyScheduleUsecase) PreviewScheduleChange(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SchedulePreviewResponse, error) {
	if _, err := u.authorize(ctx, doctorID); err != nil {
		return nil, err
	}

	proposed, err := u.proposal(doctorID, req)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)
	if err := u.ensureDoctor(db, doctorID); err != nil {
		return nil, err
	}

	conflicts, err := u.reconcile(db, proposed)
	if err != nil {
		return nil, err
	}

	return &dto.SchedulePreviewResponse{
		Conflicts: converter.ScheduleConflictsToResponses(conflicts),
		Total:     len(conflicts),
	}, nil
}

// SaveWeeklySchedule replaces the doctor's weekly schedule.
//
// Flow:
// 1. Only the doctor themselves or an admin may save
// 2. Validate the proposal against clinic hours
// 3. Lock the doctor row, then reconcile against upcoming appointments
// 4. Refuse with ScheduleConflictError unless req.Force is set
// 5. Upsert and write the audit trail, including overridden conflicts
//
// Appointments are never cancelled here; overridden conflicts are left for
// staff to reschedule.
func (u *weeklyScheduleUsecase) SaveWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.SaveWeeklyScheduleResponse, error) {
	caller, err := u.authorize(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	proposed, err := u.proposal(doctorID, req)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	// Bookings take the same row lock, so none can land between reconcile and commit
	if err := u.lockDoctor(tx, doctorID); err != nil {
		return nil, err
	}

	current, err := u.scheduleRepo.FindByDoctorID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	conflicts, err := u.reconcile(tx, proposed)
	if err != nil {
		return nil, err
	}
	conflictResponses := converter.ScheduleConflictsToResponses(conflicts)

	if len(conflicts) > 0 && !req.Force {
		for _, c := range conflicts {
			u.metrics.ObserveConflict(c.Reason, false)
		}
		return nil, &ScheduleConflictError{Conflicts: conflictResponses}
	}

	proposed.UpdatedBy = &caller.UserID
	if err := u.scheduleRepo.Upsert(tx, proposed); err != nil {
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to save weekly schedule for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	// Audit log - schedule update
	var oldValue interface{}
	if current != nil {
		oldValue = current.Days
	}
	if len(conflicts) > 0 {
		err = u.auditService.LogOverride(ctx, tx, &caller.UserID, entity.AuditActionScheduleForceUpdate, "weekly_schedule", doctorID.String(), oldValue, proposed.Days, conflictResponses)
	} else {
		err = u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionScheduleUpdate, "weekly_schedule", doctorID.String(), oldValue, proposed.Days)
	}
	if err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
		// Don't fail the transaction for audit log errors
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	for _, c := range conflicts {
		u.metrics.ObserveConflict(c.Reason, true)
	}
	if len(conflicts) > 0 {
		u.log.Infof("Weekly schedule for doctor %s saved by %s overriding %d conflict(s)", doctorID, caller.UserID, len(conflicts))
	}

	return &dto.SaveWeeklyScheduleResponse{
		Schedule:            *converter.WeeklyScheduleToResponse(proposed, u.opts.Fallback),
		OverriddenConflicts: conflictResponses,
	}, nil
}

// authorize allows the doctor who owns the schedule and administrators
func (u *weeklyScheduleUsecase) authorize(ctx context.Context, doctorID uuid.UUID) (actor, error) {
	caller, err := actorFromContext(ctx)
	if err != nil {
		return actor{}, err
	}
	if caller.RoleID == entity.RoleIDAdmin {
		return caller, nil
	}
	if caller.RoleID == entity.RoleIDDoctor && caller.UserID == doctorID {
		return caller, nil
	}
	return actor{}, ErrScheduleForbidden
}

func (u *weeklyScheduleUsecase) proposal(doctorID uuid.UUID, req *dto.WeeklyScheduleRequest) (*entity.WeeklySchedule, error) {
	proposed := converter.WeeklyScheduleRequestToEntity(doctorID, req)
	if err := scheduling.ValidateWeeklySchedule(proposed, u.opts.Bounds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return proposed, nil
}

func (u *weeklyScheduleUsecase) ensureDoctor(db *gorm.DB, doctorID uuid.UUID) error {
	doctor, err := u.doctorProfileRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	return nil
}

func (u *weeklyScheduleUsecase) lockDoctor(tx *gorm.DB, doctorID uuid.UUID) error {
	doctor, err := u.doctorProfileRepo.LockByUserID(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor profile %s: %+v", doctorID, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}
	return nil
}

// reconcile checks the proposal against appointments that have not ended yet
func (u *weeklyScheduleUsecase) reconcile(db *gorm.DB, proposed *entity.WeeklySchedule) ([]scheduling.ScheduleConflict, error) {
	appointments, err := u.appointmentRepo.FindByFilter(db, entity.AppointmentFilter{
		DoctorID:     proposed.DoctorID,
		From:         u.opts.now(),
		OnlyBlocking: true,
	})
	if err != nil {
		u.log.Warnf("Failed to find upcoming appointments for doctor %s: %+v", proposed.DoctorID, err)
		return nil, err
	}

	conflicts, err := scheduling.ReconcileScheduleChange(proposed, appointments, u.opts.location())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}
	return conflicts, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

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
	ErrAppointmentNotFound      = errors.New("appointment not found")
	ErrAppointmentForbidden     = errors.New("appointment does not belong to you")
	ErrAppointmentInPast        = errors.New("cannot book an appointment in the past")
	ErrAppointmentStatusChanged = errors.New("appointment status was changed concurrently")
	ErrPatientNotFound          = errors.New("patient not found")
	ErrPatientRequired          = errors.New("patient_id is required when booking for a patient")
	ErrSlotUnavailable          = errors.New("the selected time conflicts with another appointment")
	ErrSlotOutsideSchedule      = errors.New("the selected time is outside the doctor's working hours")
	ErrInvalidDateRange         = errors.New("'to' must not be before 'from'")
	ErrScheduleCorrupt          = errors.New("stored weekly schedule is unreadable")
)

// maxListRangeDays bounds ListDoctorAppointments windows
const maxListRangeDays = 92

type AppointmentUsecase interface {
	GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.SlotListRequest) (*dto.SlotListResponse, error)
	CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error)
	UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
}

type appointmentUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	opts               SchedulingOptions
	appointmentRepo    repository.AppointmentRepository
	scheduleRepo       repository.WeeklyScheduleRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	slotLocker         service.SlotLocker
	auditService       service.AuditService
	metrics            *metrics.SchedulingMetrics
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	opts SchedulingOptions,
	appointmentRepo repository.AppointmentRepository,
	scheduleRepo repository.WeeklyScheduleRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	slotLocker service.SlotLocker,
	auditService service.AuditService,
	schedulingMetrics *metrics.SchedulingMetrics,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                 db,
		log:                log,
		opts:               opts,
		appointmentRepo:    appointmentRepo,
		scheduleRepo:       scheduleRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		slotLocker:         slotLocker,
		auditService:       auditService,
		metrics:            schedulingMetrics,
	}
}

// GetAvailableSlots lists the candidate start times for a doctor on a date.
// Past dates are answered like any other date.
func (u *appointmentUsecase) GetAvailableSlots(ctx context.Context, doctorID uuid.UUID, req *dto.SlotListRequest) (*dto.SlotListResponse, error) {
	started := time.Now()

	day, err := u.opts.parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduling.ErrInvalidTimeFormat, req.Date)
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = u.opts.DefaultDurationMinutes
	}

	db := u.db.WithContext(ctx)
	doctor, err := u.doctorProfileRepo.FindByUserID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor profile %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slotReq, err := u.slotRequest(db, doctorID, day, duration)
	if err != nil {
		return nil, err
	}

	slots, err := scheduling.GenerateSlots(slotReq)
	if err != nil {
		u.log.Warnf("Failed to generate slots for doctor %s on %s: %+v", doctorID, req.Date, err)
		return nil, err
	}

	available := 0
	for _, s := range slots {
		if s.Available {
			available++
		}
	}
	u.metrics.ObserveSlots(available, len(slots)-available, time.Since(started).Seconds())

	return &dto.SlotListResponse{
		DoctorID:           doctorID,
		Date:               req.Date,
		DurationMinutes:    duration,
		GranularityMinutes: u.opts.GranularityMinutes,
		Slots:              converter.SlotsToResponses(slots),
		Total:              len(slots),
		Available:          available,
	}, nil
}

// CreateAppointment books a slot.
//
// Flow:
// 1. Resolve the patient (patients book for themselves, staff name the patient)
// 2. Reject starts that are not in the future
// 3. Take the per-doctor, per-day Redis lock
// 4. In a transaction: lock the doctor row, reload schedule and that day's
//    appointments, re-evaluate the slot
// 5. Insert and audit, then commit
//
// Step 4 is authoritative; the Redis lock only keeps contenders from piling
// onto the row lock.
func (u *appointmentUsecase) CreateAppointment(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	caller, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	patientID, err := u.bookingPatient(caller, req.PatientID)
	if err != nil {
		return nil, err
	}

	day, err := u.opts.parseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduling.ErrInvalidTimeFormat, req.Date)
	}
	at, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMinutes
	if duration == 0 {
		duration = u.opts.DefaultDurationMinutes
	}

	startAt := at.On(day)
	if !startAt.After(u.opts.now()) {
		return nil, ErrAppointmentInPast
	}

	db := u.db.WithContext(ctx)
	patient, err := u.patientProfileRepo.FindByUserID(db, patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	release, err := u.slotLocker.Acquire(ctx, req.DoctorID, day)
	if err != nil {
		if errors.Is(err, service.ErrSlotLocked) {
			u.metrics.ObserveBooking("locked")
			return nil, service.ErrSlotLocked
		}
		u.log.Warnf("Failed to acquire booking lock for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	defer release()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor, err := u.doctorProfileRepo.LockByUserID(tx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to lock doctor profile %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	slotReq, err := u.slotRequest(tx, req.DoctorID, day, duration)
	if err != nil {
		return nil, err
	}
	slot, err := scheduling.EvaluateSlot(slotReq, at)
	if err != nil {
		u.log.Warnf("Failed to evaluate slot for doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	switch slot.Reason {
	case scheduling.SlotReasonOutsideSchedule:
		u.metrics.ObserveBooking("outside_schedule")
		return nil, ErrSlotOutsideSchedule
	case scheduling.SlotReasonConflictsWithAppointment:
		u.metrics.ObserveBooking("conflict")
		return nil, ErrSlotUnavailable
	}

	appointment := &entity.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       patientID,
		StartAt:         startAt,
		DurationMinutes: duration,
		Status:          entity.AppointmentStatusScheduled,
		Notes:           req.Notes,
		CreatedBy:       &caller.UserID,
	}
	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		if isForeignKeyError(err, "patient") {
			return nil, ErrPatientNotFound
		}
		if isForeignKeyError(err, "doctor") {
			return nil, ErrDoctorNotFound
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	// Audit log - create appointment
	appointment.Patient = *patient
	appointment.Doctor = *doctor
	response := converter.AppointmentToResponse(appointment, u.opts.location())
	if err := u.auditService.LogCreate(ctx, tx, &caller.UserID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), response); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.metrics.ObserveBooking("created")
	u.log.Infof("Appointment created: id=%s, doctor=%s, start=%s", appointment.ID, appointment.DoctorID, startAt.Format(time.RFC3339))
	return response, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	caller, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !canAccessAppointment(caller, appointment) {
		return nil, ErrAppointmentForbidden
	}

	return converter.AppointmentToResponse(appointment, u.opts.location()), nil
}

// ListDoctorAppointments returns the doctor's appointments between two dates
// (inclusive). Defaults to the next seven days.
func (u *appointmentUsecase) ListDoctorAppointments(ctx context.Context, doctorID uuid.UUID, req *dto.AppointmentListRequest) (*dto.AppointmentListResponse, error) {
	caller, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if caller.RoleID == entity.RoleIDDoctor && caller.UserID != doctorID {
		return nil, ErrAppointmentForbidden
	}

	from := u.opts.today()
	if req.From != "" {
		if from, err = u.opts.parseDate(req.From); err != nil {
			return nil, fmt.Errorf("%w: %s", scheduling.ErrInvalidTimeFormat, req.From)
		}
	}
	to := from.AddDate(0, 0, 6)
	if req.To != "" {
		if to, err = u.opts.parseDate(req.To); err != nil {
			return nil, fmt.Errorf("%w: %s", scheduling.ErrInvalidTimeFormat, req.To)
		}
	}
	if to.Before(from) || to.After(from.AddDate(0, 0, maxListRangeDays)) {
		return nil, ErrInvalidDateRange
	}

	appointments, err := u.appointmentRepo.FindByFilter(u.db.WithContext(ctx), entity.AppointmentFilter{
		DoctorID: doctorID,
		From:     from,
		To:       to.AddDate(0, 0, 1),
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments, u.opts.location()),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) UpdateAppointmentStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	next, err := entity.ParseAppointmentStatus(req.Status)
	if err != nil {
		return nil, err
	}
	action := entity.AuditActionAppointmentStatusUpdate
	if next == entity.AppointmentStatusCancelled {
		action = entity.AuditActionAppointmentCancel
	}
	return u.changeStatus(ctx, appointmentID, next, action)
}

func (u *appointmentUsecase) CancelAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.changeStatus(ctx, appointmentID, entity.AppointmentStatusCancelled, entity.AuditActionAppointmentCancel)
}

// changeStatus applies a lifecycle transition. Patients may only cancel their
// own appointments.
func (u *appointmentUsecase) changeStatus(ctx context.Context, appointmentID uuid.UUID, next entity.AppointmentStatus, action string) (*dto.AppointmentResponse, error) {
	caller, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment, err := u.appointmentRepo.FindByID(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if !canAccessAppointment(caller, appointment) {
		return nil, ErrAppointmentForbidden
	}
	if caller.RoleID == entity.RoleIDPatient && next != entity.AppointmentStatusCancelled {
		return nil, ErrAppointmentForbidden
	}

	previous := appointment.Status
	if err := appointment.TransitionTo(next); err != nil {
		return nil, err
	}

	affected, err := u.appointmentRepo.UpdateStatus(tx, appointmentID, previous, next)
	if err != nil {
		u.log.Warnf("Failed to update appointment %s status: %+v", appointmentID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAppointmentStatusChanged
	}

	// Audit log - status change
	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, action, "appointment", appointmentID.String(), string(previous), string(next)); err != nil {
		u.log.Warnf("Failed to create audit log: %+v", err)
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment %s status: %s -> %s", appointmentID, previous, next)
	return converter.AppointmentToResponse(appointment, u.opts.location()), nil
}

// slotRequest loads what slot evaluation needs for one doctor and day
func (u *appointmentUsecase) slotRequest(db *gorm.DB, doctorID uuid.UUID, day time.Time, duration int) (scheduling.SlotRequest, error) {
	schedule, err := u.scheduleRepo.FindByDoctorID(db, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find weekly schedule for doctor %s: %+v", doctorID, err)
		return scheduling.SlotRequest{}, err
	}
	if schedule != nil {
		weekday := day.Weekday()
		if err := scheduling.ValidateDay(scheduling.ResolveDay(schedule, u.opts.Fallback, weekday)); err != nil {
			u.log.Warnf("Stored weekly schedule for doctor %s is corrupt on %s: %+v", doctorID, entity.WeekdayKey(weekday), err)
			// %v: the cause must not match input-format sentinels
			return scheduling.SlotRequest{}, fmt.Errorf("%w: %s: %v", ErrScheduleCorrupt, entity.WeekdayKey(weekday), err)
		}
	}

	appointments, err := u.appointmentRepo.FindByFilter(db, entity.AppointmentFilter{
		DoctorID:     doctorID,
		From:         day,
		To:           day.AddDate(0, 0, 1),
		OnlyBlocking: true,
	})
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return scheduling.SlotRequest{}, err
	}

	return scheduling.SlotRequest{
		Schedule:           schedule,
		Fallback:           u.opts.Fallback,
		Date:               day,
		DurationMinutes:    duration,
		GranularityMinutes: u.opts.GranularityMinutes,
		Appointments:       appointments,
	}, nil
}

// bookingPatient decides whose appointment is being booked
func (u *appointmentUsecase) bookingPatient(caller actor, requested *uuid.UUID) (uuid.UUID, error) {
	if caller.RoleID == entity.RoleIDPatient {
		if requested != nil && *requested != caller.UserID {
			return uuid.Nil, ErrAppointmentForbidden
		}
		return caller.UserID, nil
	}
	if requested == nil || *requested == uuid.Nil {
		return uuid.Nil, ErrPatientRequired
	}
	return *requested, nil
}

// canAccessAppointment lets patients and doctors see only their own appointments
func canAccessAppointment(caller actor, appointment *entity.Appointment) bool {
	switch caller.RoleID {
	case entity.RoleIDPatient:
		return appointment.PatientID == caller.UserID
	case entity.RoleIDDoctor:
		return appointment.DoctorID == caller.UserID
	default:
		return true
	}
}

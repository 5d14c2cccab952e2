package usecase

import (
	"context"
	"errors"
	"testing"

	"dental-scheduling/internal/delivery/dto"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/scheduling"
	"dental-scheduling/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scheduleFixture struct {
	uc           WeeklyScheduleUsecase
	mock         sqlmock.Sqlmock
	appointments *mockAppointmentRepo
	schedules    *mockScheduleRepo
	doctors      *mockDoctorProfileRepo
	audit        *mockAuditService
	doctorID     uuid.UUID
}

func newScheduleFixture(t *testing.T) *scheduleFixture {
	t.Helper()
	db, mock := newMockDB(t)

	doctorID := uuid.New()
	f := &scheduleFixture{
		mock:         mock,
		appointments: &mockAppointmentRepo{},
		schedules:    newMockScheduleRepo(),
		doctors:      newMockDoctorProfileRepo(doctorID),
		audit:        &mockAuditService{},
		doctorID:     doctorID,
	}
	f.uc = NewWeeklyScheduleUsecase(
		db,
		newTestLogger(),
		newTestOptions(),
		f.schedules,
		f.appointments,
		f.doctors,
		f.audit,
		nil,
	)
	return f
}

func (f *scheduleFixture) doctorCtx() context.Context {
	return withActor(f.doctorID, entity.RoleIDDoctor)
}

func (f *scheduleFixture) booked(date, hhmm string, minutes int) entity.Appointment {
	return f.appointments.add(entity.Appointment{
		DoctorID:        f.doctorID,
		PatientID:       uuid.New(),
		StartAt:         at(date, hhmm),
		DurationMinutes: minutes,
		Status:          entity.AppointmentStatusConfirmed,
		Patient:         entity.PatientProfile{User: entity.User{FullName: "Maria Costa"}},
	})
}

// morningsOnly opens Monday, Wednesday and Friday from 08:00 to 12:00
func morningsOnly() *dto.WeeklyScheduleRequest {
	morning := dto.DayScheduleRequest{IsAvailable: true, StartTime: "08:00", EndTime: "12:00"}
	return &dto.WeeklyScheduleRequest{
		Days: map[string]dto.DayScheduleRequest{
			"monday":    morning,
			"wednesday": morning,
			"friday":    morning,
		},
	}
}

func TestGetWeeklySchedule_FallbackWhenNoneStored(t *testing.T) {
	f := newScheduleFixture(t)

	res, err := f.uc.GetWeeklySchedule(context.Background(), f.doctorID)
	require.NoError(t, err)
	assert.True(t, res.IsDefault)
	assert.Equal(t, scheduling.WeekdayFallbackPolicyName, res.FallbackPolicy)
	assert.Equal(t, "08:00", res.Days["monday"].StartTime)
	assert.False(t, res.Days["sunday"].IsAvailable)

	_, err = f.uc.GetWeeklySchedule(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestPreviewScheduleChange_ReportsOrphanedAppointments(t *testing.T) {
	f := newScheduleFixture(t)
	afternoon := f.booked(nextMonday, "14:00", 60)
	tuesday := f.booked("2026-10-20", "09:00", 30)
	f.booked(nextMonday, "09:00", 60)   // still inside the new hours
	f.booked("2026-10-16", "09:00", 30) // already over

	res, err := f.uc.PreviewScheduleChange(f.doctorCtx(), f.doctorID, morningsOnly())
	require.NoError(t, err)
	require.Equal(t, 2, res.Total)

	assert.Equal(t, afternoon.ID, res.Conflicts[0].AppointmentID)
	assert.Equal(t, scheduling.ConflictReasonOutsideHours, res.Conflicts[0].Reason)
	assert.Equal(t, nextMonday, res.Conflicts[0].AppointmentDate)
	assert.Equal(t, "14:00", res.Conflicts[0].AppointmentTime)
	assert.Equal(t, 60, res.Conflicts[0].Duration)
	assert.Equal(t, "Maria Costa", res.Conflicts[0].PatientName)

	assert.Equal(t, tuesday.ID, res.Conflicts[1].AppointmentID)
	assert.Equal(t, scheduling.ConflictReasonDayUnavailable, res.Conflicts[1].Reason)

	assert.Empty(t, f.schedules.upserted, "preview never saves")
	assert.Empty(t, f.doctors.locked, "preview takes no lock")
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_RefusesConflictsWithoutForce(t *testing.T) {
	f := newScheduleFixture(t)
	f.booked(nextMonday, "14:00", 60)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.uc.SaveWeeklySchedule(f.doctorCtx(), f.doctorID, morningsOnly())
	require.ErrorIs(t, err, ErrScheduleHasConflicts)

	var conflictErr *ScheduleConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "14:00", conflictErr.Conflicts[0].AppointmentTime)

	assert.Empty(t, f.schedules.upserted)
	assert.Empty(t, f.audit.entries)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_ForceOverridesAndAudits(t *testing.T) {
	f := newScheduleFixture(t)
	appt := f.booked(nextMonday, "14:00", 60)
	adminID := uuid.New()
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	req := morningsOnly()
	req.Force = true
	res, err := f.uc.SaveWeeklySchedule(withActor(adminID, entity.RoleIDAdmin), f.doctorID, req)
	require.NoError(t, err)

	require.Len(t, res.OverriddenConflicts, 1)
	assert.Equal(t, appt.ID, res.OverriddenConflicts[0].AppointmentID)
	assert.False(t, res.Schedule.IsDefault)
	assert.Equal(t, "12:00", res.Schedule.Days["monday"].EndTime)
	assert.False(t, res.Schedule.Days["tuesday"].IsAvailable)

	require.Len(t, f.schedules.upserted, 1)
	saved := f.schedules.upserted[0]
	assert.Len(t, saved.Days, 7, "every weekday is stored")
	require.NotNil(t, saved.UpdatedBy)
	assert.Equal(t, adminID, *saved.UpdatedBy)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, entity.AuditActionScheduleForceUpdate, entry.Action)
	assert.Equal(t, f.doctorID.String(), entry.EntityID)
	assert.Nil(t, entry.OldValue)
	assert.Len(t, entry.Overridden, 1)

	// the appointment itself is left alone
	assert.Equal(t, entity.AppointmentStatusConfirmed, f.appointments.appointments[0].Status)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_NoConflicts(t *testing.T) {
	f := newScheduleFixture(t)
	previous := &entity.WeeklySchedule{DoctorID: f.doctorID, Days: entity.WeeklyDays{"monday": {IsAvailable: true, StartTime: "08:00", EndTime: "17:00"}}}
	f.schedules.schedules[f.doctorID] = previous
	f.booked(nextMonday, "09:00", 60)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	res, err := f.uc.SaveWeeklySchedule(f.doctorCtx(), f.doctorID, morningsOnly())
	require.NoError(t, err)
	assert.Empty(t, res.OverriddenConflicts)

	assert.Equal(t, []uuid.UUID{f.doctorID}, f.doctors.locked)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, entity.AuditActionScheduleUpdate, f.audit.entries[0].Action)
	assert.Equal(t, previous.Days, f.audit.entries[0].OldValue)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_LocksDoctorRowBeforeSaving(t *testing.T) {
	db, mock := newMockDB(t)
	doctorID := uuid.New()
	schedules := newMockScheduleRepo()
	uc := NewWeeklyScheduleUsecase(
		db,
		newTestLogger(),
		newTestOptions(),
		schedules,
		&mockAppointmentRepo{},
		repository.NewDoctorProfileRepository(),
		&mockAuditService{},
		nil,
	)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "doctor_profiles" WHERE user_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "license_number"}).AddRow(doctorID.String(), "CRO-1234"))
	mock.ExpectCommit()

	_, err := uc.SaveWeeklySchedule(withActor(doctorID, entity.RoleIDDoctor), doctorID, morningsOnly())
	require.NoError(t, err)
	assert.Len(t, schedules.upserted, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_UnknownDoctor(t *testing.T) {
	f := newScheduleFixture(t)
	admin := withActor(uuid.New(), entity.RoleIDAdmin)
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.uc.SaveWeeklySchedule(admin, uuid.New(), morningsOnly())
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Empty(t, f.schedules.upserted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestSaveWeeklySchedule_Rejected(t *testing.T) {
	f := newScheduleFixture(t)

	tests := []struct {
		name    string
		ctx     context.Context
		req     *dto.WeeklyScheduleRequest
		wantErr []error
	}{
		{
			name:    "another doctor",
			ctx:     withActor(uuid.New(), entity.RoleIDDoctor),
			req:     morningsOnly(),
			wantErr: []error{ErrScheduleForbidden},
		},
		{
			name:    "receptionist",
			ctx:     withActor(uuid.New(), entity.RoleIDReceptionist),
			req:     morningsOnly(),
			wantErr: []error{ErrScheduleForbidden},
		},
		{
			name: "outside clinic hours",
			ctx:  f.doctorCtx(),
			req: &dto.WeeklyScheduleRequest{Days: map[string]dto.DayScheduleRequest{
				"monday": {IsAvailable: true, StartTime: "06:00", EndTime: "12:00"},
			}},
			wantErr: []error{ErrInvalidSchedule, scheduling.ErrOutsideClinicBounds},
		},
		{
			name: "end before start",
			ctx:  f.doctorCtx(),
			req: &dto.WeeklyScheduleRequest{Days: map[string]dto.DayScheduleRequest{
				"monday": {IsAvailable: true, StartTime: "12:00", EndTime: "08:00"},
			}},
			wantErr: []error{ErrInvalidSchedule, scheduling.ErrInvalidDayWindow},
		},
		{
			name: "unknown weekday",
			ctx:  f.doctorCtx(),
			req: &dto.WeeklyScheduleRequest{Days: map[string]dto.DayScheduleRequest{
				"funday": {IsAvailable: true, StartTime: "08:00", EndTime: "12:00"},
			}},
			wantErr: []error{ErrInvalidSchedule, scheduling.ErrUnknownWeekday},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.SaveWeeklySchedule(tt.ctx, f.doctorID, tt.req)
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}

			_, err = f.uc.PreviewScheduleChange(tt.ctx, f.doctorID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr[0])
		})
	}

	assert.Empty(t, f.schedules.upserted)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

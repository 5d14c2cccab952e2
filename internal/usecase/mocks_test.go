package usecase

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"dental-scheduling/internal/delivery/http/middleware"
	"dental-scheduling/internal/domain/entity"
	"dental-scheduling/internal/domain/scheduling"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// clinic is UTC-3 with no DST
var clinic = time.FixedZone("BRT", -3*60*60)

// testNow is Friday 2026-10-16 12:00 clinic time
var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, clinic)

// nextMonday is the first working day after testNow
const nextMonday = "2026-10-19"

func at(date, hhmm string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02 15:04", date+" "+hhmm, clinic)
	if err != nil {
		panic(err)
	}
	return ts
}

func newTestOptions() SchedulingOptions {
	bounds, err := scheduling.NewClinicBounds("07:00", "19:00")
	if err != nil {
		panic(err)
	}
	return SchedulingOptions{
		Location: clinic,
		Bounds:   bounds,
		Fallback: scheduling.NewWeekdayFallbackPolicy(
			scheduling.MustParseTimeOfDay("08:00"),
			scheduling.MustParseTimeOfDay("17:00"),
		),
		GranularityMinutes:     30,
		DefaultDurationMinutes: 30,
		Now:                    func() time.Time { return testNow },
	}
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func withActor(userID uuid.UUID, roleID int) context.Context {
	return middleware.WithCaller(context.Background(), middleware.Caller{UserID: userID, RoleID: roleID})
}

// =============================================================================
// Repositories
// =============================================================================

type mockAppointmentRepo struct {
	appointments []entity.Appointment
	createErr    error
}

func (r *mockAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	r.appointments = append(r.appointments, *appointment)
	return nil
}

func (r *mockAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].ID == id {
			found := r.appointments[i]
			return &found, nil
		}
	}
	return nil, nil
}

func (r *mockAppointmentRepo) FindByFilter(db *gorm.DB, filter entity.AppointmentFilter) ([]entity.Appointment, error) {
	result := []entity.Appointment{}
	for _, a := range r.appointments {
		if a.DoctorID != filter.DoctorID {
			continue
		}
		if filter.OnlyBlocking && !a.BlocksTime() {
			continue
		}
		if !filter.To.IsZero() && !a.StartAt.Before(filter.To) {
			continue
		}
		if !filter.From.IsZero() && !a.EndAt().After(filter.From) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartAt.Before(result[j].StartAt) })
	return result, nil
}

func (r *mockAppointmentRepo) UpdateStatus(db *gorm.DB, id uuid.UUID, from, to entity.AppointmentStatus) (int64, error) {
	for i := range r.appointments {
		if r.appointments[i].ID == id && r.appointments[i].Status == from {
			r.appointments[i].Status = to
			return 1, nil
		}
	}
	return 0, nil
}

func (r *mockAppointmentRepo) add(a entity.Appointment) entity.Appointment {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = entity.AppointmentStatusScheduled
	}
	r.appointments = append(r.appointments, a)
	return a
}

type mockScheduleRepo struct {
	schedules map[uuid.UUID]*entity.WeeklySchedule
	upserted  []*entity.WeeklySchedule
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: map[uuid.UUID]*entity.WeeklySchedule{}}
}

func (r *mockScheduleRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) (*entity.WeeklySchedule, error) {
	return r.schedules[doctorID], nil
}

func (r *mockScheduleRepo) Upsert(db *gorm.DB, schedule *entity.WeeklySchedule) error {
	r.schedules[schedule.DoctorID] = schedule
	r.upserted = append(r.upserted, schedule)
	return nil
}

type mockDoctorProfileRepo struct {
	profiles  map[uuid.UUID]*entity.DoctorProfile
	created   []*entity.DoctorProfile
	createErr error
	locked    []uuid.UUID
}

func newMockDoctorProfileRepo(doctorIDs ...uuid.UUID) *mockDoctorProfileRepo {
	r := &mockDoctorProfileRepo{profiles: map[uuid.UUID]*entity.DoctorProfile{}}
	for _, id := range doctorIDs {
		r.profiles[id] = &entity.DoctorProfile{
			UserID:         id,
			LicenseNumber:  "CRO-" + id.String()[:8],
			Specialization: "Orthodontics",
			User:           entity.User{ID: id, FullName: "Dr. Ana Souza", RoleID: entity.RoleIDDoctor},
		}
	}
	return r
}

func (r *mockDoctorProfileRepo) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.profiles[profile.UserID] = profile
	r.created = append(r.created, profile)
	return nil
}

func (r *mockDoctorProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return r.profiles[userID], nil
}

func (r *mockDoctorProfileRepo) LockByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error) {
	r.locked = append(r.locked, userID)
	return r.profiles[userID], nil
}

func (r *mockDoctorProfileRepo) FindAll(db *gorm.DB) ([]entity.DoctorProfile, error) {
	profiles := make([]entity.DoctorProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, *p)
	}
	return profiles, nil
}

type mockPatientProfileRepo struct {
	profiles map[uuid.UUID]*entity.PatientProfile
}

func newMockPatientProfileRepo(patientIDs ...uuid.UUID) *mockPatientProfileRepo {
	r := &mockPatientProfileRepo{profiles: map[uuid.UUID]*entity.PatientProfile{}}
	for _, id := range patientIDs {
		r.profiles[id] = &entity.PatientProfile{
			UserID: id,
			User:   entity.User{ID: id, FullName: "João Lima", RoleID: entity.RoleIDPatient},
		}
	}
	return r
}

func (r *mockPatientProfileRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.PatientProfile, error) {
	return r.profiles[userID], nil
}

type mockUserRepo struct {
	byEmail   map[string]*entity.User
	createErr error
}

func (r *mockUserRepo) Create(db *gorm.DB, user *entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if r.byEmail == nil {
		r.byEmail = map[string]*entity.User{}
	}
	r.byEmail[user.Email] = user
	return nil
}

func (r *mockUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	return r.byEmail[email], nil
}

type mockAuditLogRepo struct {
	logs []entity.AuditLog
}

func (r *mockAuditLogRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	r.logs = append(r.logs, *log)
	return nil
}

func (r *mockAuditLogRepo) FindAll(db *gorm.DB, filter entity.AuditLogFilter) ([]entity.AuditLog, error) {
	result := []entity.AuditLog{}
	for _, l := range r.logs {
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.UserID != nil && (l.UserID == nil || *l.UserID != *filter.UserID) {
			continue
		}
		result = append(result, l)
	}
	return result, nil
}

func (r *mockAuditLogRepo) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	for i := range r.logs {
		if r.logs[i].ID == id {
			return &r.logs[i], nil
		}
	}
	return nil, nil
}

// =============================================================================
// Services
// =============================================================================

type auditEntry struct {
	Action     string
	EntityID   string
	UserID     *uuid.UUID
	OldValue   interface{}
	NewValue   interface{}
	Overridden interface{}
}

type mockAuditService struct {
	entries []auditEntry
}

func (s *mockAuditService) LogCreate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) error {
	s.entries = append(s.entries, auditEntry{Action: action, EntityID: entityID, UserID: userID, NewValue: newValue})
	return nil
}

func (s *mockAuditService) LogUpdate(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	s.entries = append(s.entries, auditEntry{Action: action, EntityID: entityID, UserID: userID, OldValue: oldValue, NewValue: newValue})
	return nil
}

func (s *mockAuditService) LogOverride(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue, overridden interface{}) error {
	s.entries = append(s.entries, auditEntry{Action: action, EntityID: entityID, UserID: userID, OldValue: oldValue, NewValue: newValue, Overridden: overridden})
	return nil
}

type mockSlotLocker struct {
	err      error
	acquired []string
	released int
}

func (l *mockSlotLocker) Acquire(ctx context.Context, doctorID uuid.UUID, day time.Time) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired = append(l.acquired, doctorID.String()+"/"+day.Format("2006-01-02"))
	return func() { l.released++ }, nil
}

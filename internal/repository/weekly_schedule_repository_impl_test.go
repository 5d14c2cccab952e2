package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyScheduleRepository_FindByDoctorID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWeeklyScheduleRepository()
	doctorID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "doctor_weekly_schedules" WHERE doctor_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "days", "updated_by", "created_at", "updated_at"}).
			AddRow(doctorID.String(), []byte(`{"monday":{"is_available":true,"start_time":"08:00","end_time":"12:00"}}`), nil, now, now))

	schedule, err := repo.FindByDoctorID(db, doctorID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, doctorID, schedule.DoctorID)
	assert.Equal(t, "12:00", schedule.Days["monday"].EndTime)
	assert.True(t, schedule.Days["monday"].IsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeeklyScheduleRepository_FindByDoctorID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWeeklyScheduleRepository()

	mock.ExpectQuery(`SELECT \* FROM "doctor_weekly_schedules"`).
		WillReturnRows(sqlmock.NewRows([]string{"doctor_id", "days"}))

	schedule, err := repo.FindByDoctorID(db, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, schedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

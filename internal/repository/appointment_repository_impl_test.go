package repository

import (
	"errors"
	"testing"
	"time"

	"dental-scheduling/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentRepository_FindByFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	from := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE doctor_id = .+ AND start_at < .+ AND start_at \+ duration_minutes \* interval '1 minute' > .+ AND status NOT IN .+ ORDER BY start_at ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "patient_id", "start_at", "duration_minutes", "status"}))

	appointments, err := repo.FindByFilter(db, entity.AppointmentFilter{
		DoctorID:     uuid.New(),
		From:         from,
		To:           from.AddDate(0, 0, 1),
		OnlyBlocking: true,
	})
	require.NoError(t, err)
	assert.Empty(t, appointments)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_FindByFilter_OpenWindow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE doctor_id = \$1 ORDER BY start_at ASC`).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByFilter(db, entity.AppointmentFilter{DoctorID: uuid.New()})
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentRepository_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentRepository()
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "appointments" SET "status"=.+ WHERE id = .+ AND status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rows, err := repo.UpdateStatus(db, id, entity.AppointmentStatusScheduled, entity.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

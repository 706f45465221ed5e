package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	apperrors "clinicbooking/internal/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*PGBookingRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewPGBookingRepository(conn), mock
}

var bookingColumns = []string{"id", "doctor_id", "date", "slot", "patient_name", "patient_phone", "notes", "created_at"}

func TestPGRepository_Append(t *testing.T) {
	repo, mock := setupMockDB(t)
	created := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockBookingsQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WithArgs(1, "2025-08-10", "09:00", "Amal", "", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, created))
	mock.ExpectCommit()

	b, err := repo.Append(context.Background(), draft(1, "2025-08-10", "09:00", "Amal"))
	require.NoError(t, err)
	assert.Equal(t, 1, b.ID)
	assert.Equal(t, created, b.CreatedAt)
	assert.Equal(t, "Amal", b.PatientName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_AppendWithinCapacity_Full(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockBookingsQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(countSlotQuery)).
		WithArgs(1, "2025-08-10", "09:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, n, err := repo.AppendWithinCapacity(context.Background(), draft(1, "2025-08-10", "09:00", "Priya"), 1)
	assert.ErrorIs(t, err, ErrSlotFull)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_AppendWithinCapacity_Admits(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockBookingsQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(countSlotQuery)).
		WithArgs(1, "2025-08-10", "09:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(19))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))
	mock.ExpectCommit()

	b, n, err := repo.AppendWithinCapacity(context.Background(), draft(1, "2025-08-10", "09:00", "Priya"), 20)
	require.NoError(t, err)
	assert.Equal(t, 42, b.ID)
	assert.Equal(t, 20, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_InsertFailureIsStorageError(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockBookingsQuery)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Append(context.Background(), draft(1, "2025-08-10", "09:00", "Amal"))
	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_ListBookings(t *testing.T) {
	repo, mock := setupMockDB(t)
	created := time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

	query := selectBookingColumns + ` WHERE doctor_id = $1 AND date = $2 ORDER BY id`
	mock.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(1, "2025-08-10").
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(1, 1, "2025-08-10", "09:00", "Amal", "555", "", created).
			AddRow(2, 1, "2025-08-10", "10:00", "Priya", "", "follow-up", created))

	list, err := repo.ListBookings(context.Background(), 1, "2025-08-10")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "555", list[0].PatientPhone)
	assert.Equal(t, "follow-up", list[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepository_CountForSlot(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(countSlotQuery)).
		WithArgs(2, "2025-08-10", "14:00").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountForSlot(context.Background(), 2, "2025-08-10", "14:00")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestPGRepository_ListAllQueryError(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectBookingColumns)).WillReturnError(sql.ErrConnDone)

	_, err := repo.ListAll(context.Background())
	assert.True(t, apperrors.IsStorage(err))
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestMigrate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS bookings")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), conn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

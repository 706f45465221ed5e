package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clinicbooking/internal/db"
	apperrors "clinicbooking/internal/errors"

	_ "github.com/lib/pq"
)

// ErrSlotFull is returned by AppendWithinCapacity when the slot is at capacity.
var ErrSlotFull = errors.New("slot at capacity")

const (
	lockBookingsQuery    = `LOCK TABLE bookings IN SHARE ROW EXCLUSIVE MODE`
	countSlotQuery       = `SELECT COUNT(*) FROM bookings WHERE doctor_id = $1 AND date = $2 AND slot = $3`
	selectBookingColumns = `SELECT id, doctor_id, date, slot, patient_name, patient_phone, notes, created_at FROM bookings`
)

const insertBookingQuery = `
	INSERT INTO bookings (id, doctor_id, date, slot, patient_name, patient_phone, notes, created_at)
	SELECT COALESCE(MAX(id), 0) + 1, $1::integer, $2::text, $3::text, $4::text, $5::text, $6::text, NOW()
	FROM bookings
	RETURNING id, created_at`

type PGBookingRepository struct {
	DB *sql.DB
}

func NewPGBookingRepository(db *sql.DB) *PGBookingRepository {
	return &PGBookingRepository{DB: db}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

// Migrate creates the bookings schema if it does not exist.
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, db.Schema); err != nil {
		return fmt.Errorf("apply bookings schema: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) ListBookings(ctx context.Context, doctorID int, date string) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, selectBookingColumns+` WHERE doctor_id = $1 AND date = $2 ORDER BY id`, doctorID, date)
	if err != nil {
		return nil, apperrors.NewStorageError("query bookings", err)
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) CountForSlot(ctx context.Context, doctorID int, date, slot string) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, countSlotQuery, doctorID, date, slot).Scan(&n); err != nil {
		return 0, apperrors.NewStorageError("count slot bookings", err)
	}
	return n, nil
}

func (r *PGBookingRepository) Append(ctx context.Context, draft db.BookingDraft) (db.Booking, error) {
	b, _, err := r.insert(ctx, draft, 0)
	return b, err
}

func (r *PGBookingRepository) AppendWithinCapacity(ctx context.Context, draft db.BookingDraft, capacity int) (db.Booking, int, error) {
	return r.insert(ctx, draft, capacity)
}

// insert holds the table lock for the whole transaction so MAX(id)+1 and the
// slot count cannot interleave with another writer. capacity 0 skips the count.
func (r *PGBookingRepository) insert(ctx context.Context, draft db.BookingDraft, capacity int) (db.Booking, int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return db.Booking{}, 0, apperrors.NewStorageError("begin booking transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, lockBookingsQuery); err != nil {
		return db.Booking{}, 0, apperrors.NewStorageError("lock bookings", err)
	}

	var n int
	if capacity > 0 {
		if err := tx.QueryRowContext(ctx, countSlotQuery, draft.DoctorID, draft.Date, draft.Slot).Scan(&n); err != nil {
			return db.Booking{}, 0, apperrors.NewStorageError("count slot bookings", err)
		}
		if n >= capacity {
			return db.Booking{}, n, ErrSlotFull
		}
	}

	booking := db.Booking{
		DoctorID:     draft.DoctorID,
		Date:         draft.Date,
		Slot:         draft.Slot,
		PatientName:  draft.PatientName,
		PatientPhone: draft.PatientPhone,
		Notes:        draft.Notes,
	}
	err = tx.QueryRowContext(ctx, insertBookingQuery,
		draft.DoctorID,
		draft.Date,
		draft.Slot,
		draft.PatientName,
		draft.PatientPhone,
		draft.Notes,
	).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return db.Booking{}, 0, apperrors.NewStorageError("insert booking", err)
	}

	if err := tx.Commit(); err != nil {
		return db.Booking{}, 0, apperrors.NewStorageError("commit booking", err)
	}
	booking.CreatedAt = booking.CreatedAt.UTC()
	return booking, n + 1, nil
}

func (r *PGBookingRepository) ListAll(ctx context.Context) ([]db.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, selectBookingColumns+` ORDER BY id`)
	if err != nil {
		return nil, apperrors.NewStorageError("query bookings", err)
	}
	return scanBookings(rows)
}

func (r *PGBookingRepository) Close() error {
	return r.DB.Close()
}

func scanBookings(rows *sql.Rows) ([]db.Booking, error) {
	defer rows.Close()

	bookings := []db.Booking{}
	for rows.Next() {
		var b db.Booking
		if err := rows.Scan(&b.ID, &b.DoctorID, &b.Date, &b.Slot, &b.PatientName, &b.PatientPhone, &b.Notes, &b.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("scan booking", err)
		}
		b.CreatedAt = b.CreatedAt.UTC()
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate bookings", err)
	}
	return bookings, nil
}

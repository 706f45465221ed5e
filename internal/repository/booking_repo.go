package repository

import (
	"context"
	"sync"
	"time"

	"clinicbooking/internal/db"
)

// BookingRepository holds booking records. Append is not capacity aware:
// callers serialize the count-then-append sequence per slot key.
type BookingRepository interface {
	ListBookings(ctx context.Context, doctorID int, date string) ([]db.Booking, error)
	CountForSlot(ctx context.Context, doctorID int, date, slot string) (int, error)
	Append(ctx context.Context, draft db.BookingDraft) (db.Booking, error)
	ListAll(ctx context.Context) ([]db.Booking, error)
	Close() error
}

// CapacityAppender is implemented by stores that can count and insert in one
// transaction, which keeps capacity intact across several server processes.
// It returns the slot's booking count including the new record, or
// ErrSlotFull when the slot already holds capacity bookings.
type CapacityAppender interface {
	AppendWithinCapacity(ctx context.Context, draft db.BookingDraft, capacity int) (db.Booking, int, error)
}

// MemoryBookingRepository keeps bookings in creation order. When persist is
// set it is called with the next full document before the append becomes
// visible; a persist failure leaves the store unchanged. When reload is set
// every operation first replaces the state with the reloaded document, and
// guard, if set, is held across reload, persist and commit of an append.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings []db.Booking
	lastID   int
	now      func() time.Time
	persist  func([]db.Booking) error
	reload   func() ([]db.Booking, error)
	guard    func(ctx context.Context) (func(), error)
}

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{now: time.Now}
}

func newMemoryFrom(bookings []db.Booking) *MemoryBookingRepository {
	r := NewMemoryBookingRepository()
	r.bookings, r.lastID = bookings, maxBookingID(bookings)
	return r
}

func maxBookingID(bookings []db.Booking) int {
	last := 0
	for _, b := range bookings {
		if b.ID > last {
			last = b.ID
		}
	}
	return last
}

func (r *MemoryBookingRepository) refresh() error {
	if r.reload == nil {
		return nil
	}
	bookings, err := r.reload()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.bookings, r.lastID = bookings, maxBookingID(bookings)
	r.mu.Unlock()
	return nil
}

func (r *MemoryBookingRepository) ListBookings(_ context.Context, doctorID int, date string) ([]db.Booking, error) {
	if err := r.refresh(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []db.Booking
	for _, b := range r.bookings {
		if b.DoctorID == doctorID && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryBookingRepository) CountForSlot(_ context.Context, doctorID int, date, slot string) (int, error) {
	if err := r.refresh(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, b := range r.bookings {
		if b.DoctorID == doctorID && b.Date == date && b.Slot == slot {
			n++
		}
	}
	return n, nil
}

func (r *MemoryBookingRepository) Append(ctx context.Context, draft db.BookingDraft) (db.Booking, error) {
	if r.guard != nil {
		release, err := r.guard(ctx)
		if err != nil {
			return db.Booking{}, err
		}
		defer release()
	}
	if err := r.refresh(); err != nil {
		return db.Booking{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	booking := db.Booking{
		ID:           r.lastID + 1,
		DoctorID:     draft.DoctorID,
		Date:         draft.Date,
		Slot:         draft.Slot,
		PatientName:  draft.PatientName,
		PatientPhone: draft.PatientPhone,
		Notes:        draft.Notes,
		CreatedAt:    r.now().UTC(),
	}

	next := make([]db.Booking, len(r.bookings), len(r.bookings)+1)
	copy(next, r.bookings)
	next = append(next, booking)

	if r.persist != nil {
		if err := r.persist(next); err != nil {
			return db.Booking{}, err
		}
	}

	r.bookings = next
	r.lastID = booking.ID
	return booking, nil
}

func (r *MemoryBookingRepository) ListAll(_ context.Context) ([]db.Booking, error) {
	if err := r.refresh(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]db.Booking, len(r.bookings))
	copy(out, r.bookings)
	return out, nil
}

func (r *MemoryBookingRepository) Close() error {
	return nil
}

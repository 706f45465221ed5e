package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"clinicbooking/internal/db"
	"clinicbooking/internal/entities"
	apperrors "clinicbooking/internal/errors"
	"clinicbooking/internal/repository"
	"clinicbooking/internal/utils"

	"github.com/rs/zerolog"
)

// datePattern only checks the shape; 2025-02-31 is accepted.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type BookingService struct {
	Repo     repository.BookingRepository
	Catalog  *utils.SlotCatalog
	locks    KeyLocker
	capacity int
	log      zerolog.Logger
}

// NewBookingService wires the booking core. A capacity below 1 is treated as 1.
func NewBookingService(repo repository.BookingRepository, catalog *utils.SlotCatalog, locks KeyLocker, capacity int, logger zerolog.Logger) *BookingService {
	if capacity < 1 {
		capacity = 1
	}
	if locks == nil {
		locks = NewLocalKeyLocker()
	}
	return &BookingService{
		Repo:     repo,
		Catalog:  catalog,
		locks:    locks,
		capacity: capacity,
		log:      logger,
	}
}

func (s *BookingService) Capacity() int {
	return s.capacity
}

// GetAvailability annotates every catalog slot with whether it can still be
// booked. The counts come from one listing so the view is a consistent snapshot.
func (s *BookingService) GetAvailability(ctx context.Context, doctorID int, date string) (*entities.AvailabilityResponse, error) {
	date = strings.TrimSpace(date)
	var invalid []string
	if doctorID <= 0 {
		invalid = append(invalid, "doctorId")
	}
	if !datePattern.MatchString(date) {
		invalid = append(invalid, "date")
	}
	if len(invalid) > 0 {
		return nil, apperrors.NewValidationError(invalid...)
	}

	bookings, err := s.Repo.ListBookings(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	perSlot := make(map[string]int, len(bookings))
	for _, b := range bookings {
		perSlot[b.Slot]++
	}

	labels := s.Catalog.For(doctorID, date)
	response := &entities.AvailabilityResponse{
		Date:        date,
		DoctorID:    doctorID,
		Slots:       make([]entities.SlotAvailability, 0, len(labels)),
		BookedCount: len(bookings),
		Capacity:    s.capacity,
	}
	for _, label := range labels {
		booked := perSlot[label]
		remaining := s.capacity - booked
		if remaining < 0 {
			remaining = 0
		}
		response.Slots = append(response.Slots, entities.SlotAvailability{
			Time:      label,
			Available: booked < s.capacity,
			Booked:    booked,
			Remaining: remaining,
		})
	}
	return response, nil
}

// BookSlot admits req if its slot is below capacity. The count and the append
// run under the slot's lock, so concurrent requests for one slot cannot
// overshoot the capacity.
func (s *BookingService) BookSlot(ctx context.Context, req entities.BookingRequest) (*entities.BookingConfirmation, error) {
	draft, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, draft.Key())
	if isContextErr(err) {
		return nil, apperrors.NewCanceledError(err)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("acquire slot lock", err)
	}
	defer unlock()

	booking, position, err := s.admit(ctx, draft)
	if isContextErr(err) {
		return nil, apperrors.NewCanceledError(err)
	}
	if errors.Is(err, repository.ErrSlotFull) {
		s.log.Info().
			Int("doctor_id", draft.DoctorID).
			Str("date", draft.Date).
			Str("slot", draft.Slot).
			Int("capacity", s.capacity).
			Msg("slot fully booked")
		return nil, apperrors.NewConflictError(draft.Slot, draft.Date, draft.DoctorID, s.capacity)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("booking_id", booking.ID).
		Int("doctor_id", booking.DoctorID).
		Str("date", booking.Date).
		Str("slot", booking.Slot).
		Int("token", position).
		Msg("booking created")

	return &entities.BookingConfirmation{
		Success:     true,
		Booking:     booking,
		TokenNumber: position,
	}, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *BookingService) admit(ctx context.Context, draft db.BookingDraft) (db.Booking, int, error) {
	if appender, ok := s.Repo.(repository.CapacityAppender); ok {
		return appender.AppendWithinCapacity(ctx, draft, s.capacity)
	}

	count, err := s.Repo.CountForSlot(ctx, draft.DoctorID, draft.Date, draft.Slot)
	if err != nil {
		return db.Booking{}, 0, err
	}
	if count >= s.capacity {
		return db.Booking{}, count, repository.ErrSlotFull
	}
	booking, err := s.Repo.Append(ctx, draft)
	if err != nil {
		return db.Booking{}, 0, err
	}
	return booking, count + 1, nil
}

func (s *BookingService) validate(req entities.BookingRequest) (db.BookingDraft, error) {
	draft := db.BookingDraft{
		DoctorID:     req.DoctorID,
		Date:         strings.TrimSpace(req.Date),
		Slot:         strings.TrimSpace(req.Slot),
		PatientName:  strings.TrimSpace(req.PatientName),
		PatientPhone: strings.TrimSpace(req.PatientPhone),
		Notes:        strings.TrimSpace(req.Notes),
	}

	var invalid []string
	if draft.DoctorID <= 0 {
		invalid = append(invalid, "doctorId")
	}
	if !datePattern.MatchString(draft.Date) {
		invalid = append(invalid, "date")
	}
	if draft.Slot == "" || !s.Catalog.Contains(draft.Slot) {
		invalid = append(invalid, "slot")
	}
	if draft.PatientName == "" {
		invalid = append(invalid, "patientName")
	}
	if len(invalid) > 0 {
		s.log.Debug().Strs("fields", invalid).Msg("rejected booking request")
		return db.BookingDraft{}, apperrors.NewValidationError(invalid...)
	}
	return draft, nil
}

// ListBookings returns every booking in creation order.
func (s *BookingService) ListBookings(ctx context.Context) ([]db.Booking, error) {
	return s.Repo.ListAll(ctx)
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"clinicbooking/internal/entities"
	apperrors "clinicbooking/internal/errors"
	"clinicbooking/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxBookingBody = 64 << 10

type UserBookingHandler struct {
	Bookings *service.BookingService
	Doctors  *service.DoctorService
	log      zerolog.Logger
}

func NewUserBookingHandler(bookings *service.BookingService, doctors *service.DoctorService, logger zerolog.Logger) *UserBookingHandler {
	return &UserBookingHandler{Bookings: bookings, Doctors: doctors, log: logger}
}

func (h *UserBookingHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.Doctors.ListDoctors(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *UserBookingHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, r, h.log, apperrors.NewValidationError("id"))
		return
	}
	doctor, err := h.Doctors.GetDoctor(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, doctor)
}

func (h *UserBookingHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var invalid []string
	doctorID, err := strconv.Atoi(strings.TrimSpace(q.Get("doctorId")))
	if err != nil {
		invalid = append(invalid, "doctorId")
	}
	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		invalid = append(invalid, "date")
	}
	if len(invalid) > 0 {
		writeError(w, r, h.log, apperrors.NewValidationError(invalid...))
		return
	}

	res, err := h.Bookings.GetAvailability(r.Context(), doctorID, date)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserBookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req entities.BookingRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBookingBody)).Decode(&req); err != nil {
		writeError(w, r, h.log, apperrors.ErrBadRequest("invalid request body"))
		return
	}

	conf, err := h.Bookings.BookSlot(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

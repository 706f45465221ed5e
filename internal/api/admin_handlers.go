package api

import (
	"net/http"

	"clinicbooking/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler exposes the unauthenticated debug views.
type AdminHandler struct {
	Bookings  *service.BookingService
	storeKind string
	log       zerolog.Logger
}

func NewAdminHandler(bookings *service.BookingService, storeKind string, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{Bookings: bookings, storeKind: storeKind, log: logger}
}

func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.Bookings.ListBookings(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *AdminHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Store:    h.storeKind,
		Capacity: h.Bookings.Capacity(),
	})
}

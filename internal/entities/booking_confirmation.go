package entities

import "clinicbooking/internal/db"

// BookingConfirmation is returned for an admitted booking. TokenNumber is the
// booking's position within its slot.
type BookingConfirmation struct {
	Success     bool       `json:"success"`
	Booking     db.Booking `json:"booking"`
	TokenNumber int        `json:"tokenNumber"`
}

package db

import (
	"strconv"
	"time"
)

type Doctor struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience"`
}

// BookingDraft is a validated booking that has not been assigned an id yet.
type BookingDraft struct {
	DoctorID     int
	Date         string
	Slot         string
	PatientName  string
	PatientPhone string
	Notes        string
}

type Booking struct {
	ID           int       `json:"id"`
	DoctorID     int       `json:"doctorId"`
	Date         string    `json:"date"`
	Slot         string    `json:"slot"`
	PatientName  string    `json:"patientName"`
	PatientPhone string    `json:"patientPhone"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SlotKey identifies the capacity bucket a booking falls into.
func SlotKey(doctorID int, date, slot string) string {
	return strconv.Itoa(doctorID) + "|" + date + "|" + slot
}

func (b Booking) Key() string {
	return SlotKey(b.DoctorID, b.Date, b.Slot)
}

func (d BookingDraft) Key() string {
	return SlotKey(d.DoctorID, d.Date, d.Slot)
}

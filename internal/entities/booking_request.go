package entities

type BookingRequest struct {
	DoctorID     int    `json:"doctorId"`
	Date         string `json:"date"`
	Slot         string `json:"slot"`
	PatientName  string `json:"patientName"`
	PatientPhone string `json:"patientPhone,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

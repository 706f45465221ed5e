package entities

type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Booked    int    `json:"booked"`
	Remaining int    `json:"remaining"`
}

type AvailabilityResponse struct {
	Date        string             `json:"date"`
	DoctorID    int                `json:"doctorId"`
	Slots       []SlotAvailability `json:"slots"`
	BookedCount int                `json:"bookedCount"`
	Capacity    int                `json:"capacity"`
}

package entities

// DailyReport summarises the bookings recorded for one date.
type DailyReport struct {
	Date     string      `json:"date"`
	Total    int         `json:"total"`
	ByDoctor map[int]int `json:"byDoctor"`
}

package api

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	Capacity int    `json:"capacity"`
}

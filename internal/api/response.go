package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "clinicbooking/internal/errors"
	"clinicbooking/internal/middleware"

	"github.com/rs/zerolog"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err onto its status code. Server side failures are logged
// and their cause is kept out of the response body.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, status, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := ErrorResponse{Error: err.Error()}
	var httpErr *apperrors.HTTPError
	if errors.As(err, &httpErr) {
		resp = ErrorResponse{Error: httpErr.Message, Detail: httpErr.Detail}
	}
	writeJSON(w, status, resp)
}

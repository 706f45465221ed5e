package api

import (
	"net/http"

	"clinicbooking/internal/middleware"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	StaticDir   string
	CORSOrigins []string
	BookLimit   middleware.RateLimitConfig

	// TrustProxy takes the client address from X-Forwarded-For and friends.
	TrustProxy bool
}

func NewRouter(user *UserBookingHandler, admin *AdminHandler, cfg RouterConfig, logger zerolog.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Logger(logger), middleware.Recovery(logger))

	// Public endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/doctors", user.ListDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", user.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/slots", user.GetSlots).Methods(http.MethodGet)
	api.Handle("/book", middleware.RateLimit(cfg.BookLimit, logger)(http.HandlerFunc(user.Book))).Methods(http.MethodPost)

	// Debug endpoints
	api.HandleFunc("/bookings", admin.ListBookings).Methods(http.MethodGet)
	api.HandleFunc("/health", admin.Health).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found"})
	})

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	var h http.Handler = r
	if cfg.TrustProxy {
		h = handlers.ProxyHeaders(h)
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", middleware.HeaderRequestID}),
	)(h)
}

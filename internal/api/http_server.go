package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"royalpalace/internal/config"
	"royalpalace/internal/domain"
	"royalpalace/internal/export"
	"royalpalace/internal/metrics"
	"royalpalace/internal/service"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server exposes the guest and admin HTTP API.
type Server struct {
	cfg          config.APIConfig
	availability *service.AvailabilityService
	bookings     *service.BookingService
	receipts     *service.ReceiptService
	promos       *service.PromoService
	sessions     *service.SessionService
	sessionStore domain.SessionStore
	exporter     *export.ExcelExporter
	logger       *zerolog.Logger
	server       *http.Server
	auth         *Auth
}

type Deps struct {
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Receipts     *service.ReceiptService
	Promos       *service.PromoService
	Sessions     *service.SessionService
	SessionStore domain.SessionStore
	Exporter     *export.ExcelExporter
}

func NewServer(cfg config.APIConfig, deps Deps, logger *zerolog.Logger) *Server {
	srv := &Server{
		cfg:          cfg,
		availability: deps.Availability,
		bookings:     deps.Bookings,
		receipts:     deps.Receipts,
		promos:       deps.Promos,
		sessions:     deps.Sessions,
		sessionStore: deps.SessionStore,
		exporter:     deps.Exporter,
		logger:       logger,
		auth:         NewAuth(cfg),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	mux.HandleFunc("GET /api/v1/rooms", srv.handleListRooms)
	mux.HandleFunc("GET /api/v1/rooms/available", srv.handleAvailableRooms)
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/calendar", srv.handleRoomCalendar)
	mux.HandleFunc("GET /api/v1/quote", srv.handleQuote)

	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{bookingID}", srv.handleGetBooking)
	mux.HandleFunc("GET /api/v1/bookings/{bookingID}/receipt", srv.handleReceipt)
	mux.HandleFunc("POST /api/v1/table-bookings", srv.handleCreateTableBooking)
	mux.HandleFunc("POST /api/v1/promo/validate", srv.handleValidatePromo)

	mux.HandleFunc("POST /api/v1/admin/login", srv.handleLogin)
	mux.HandleFunc("POST /api/v1/admin/logout", srv.withSession(srv.handleLogout))
	mux.HandleFunc("GET /api/v1/admin/bookings", srv.withSession(srv.handleAdminListBookings))
	mux.HandleFunc("POST /api/v1/admin/bookings/{bookingID}/status", srv.withSession(srv.handleBookingStatus))
	mux.HandleFunc("POST /api/v1/admin/bookings/{bookingID}/checkout", srv.withSession(srv.handleCheckout))
	mux.HandleFunc("POST /api/v1/admin/bookings/{bookingID}/payment", srv.withSession(srv.handleBookingPayment))
	mux.HandleFunc("DELETE /api/v1/admin/bookings/{bookingID}", srv.withSession(srv.handleDeleteBooking))
	mux.HandleFunc("GET /api/v1/admin/table-bookings", srv.withSession(srv.handleAdminListTableBookings))
	mux.HandleFunc("POST /api/v1/admin/table-bookings/{id}/status", srv.withSession(srv.handleTableBookingStatus))
	mux.HandleFunc("POST /api/v1/admin/availability/bulk", srv.withSession(srv.handleAvailabilityBulk))
	mux.HandleFunc("GET /api/v1/admin/promo", srv.withSession(srv.handleListPromos))
	mux.HandleFunc("POST /api/v1/admin/promo", srv.withSession(srv.handleCreatePromo))
	mux.HandleFunc("DELETE /api/v1/admin/promo/{code}", srv.withSession(srv.handleDeletePromo))
	mux.HandleFunc("GET /api/v1/admin/export/occupancy", srv.withSession(srv.handleOccupancyExport))

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the full middleware chain, used by tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

const sessionHeader = "x-session-token"

// withSession requires a valid admin session on the request.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(r.Header.Get(sessionHeader))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "session token is required")
			return
		}
		if _, err := s.sessions.Authenticate(r.Context(), token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next(w, r)
	}
}

// Auth provides API-key auth and per-key rate limiting.
type Auth struct {
	cfg      config.APIConfig
	clients  map[string]config.APIClientKey
	limiters sync.Map // map[string]*rate.Limiter
}

func NewAuth(cfg config.APIConfig) *Auth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &Auth{cfg: cfg, clients: m}
}

func (a *Auth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *Auth) checkAuth(r *http.Request) error {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}

	apiKey := strings.TrimSpace(r.Header.Get(header))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return fmt.Errorf("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Key), []byte(apiKey)) != 1 {
		return fmt.Errorf("invalid api key")
	}
	return nil
}

func (a *Auth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	lim := a.getLimiter(a.clientKey(r))
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

func (a *Auth) clientKey(r *http.Request) string {
	header := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if header == "" {
		header = "x-api-key"
	}
	if apiKey := strings.TrimSpace(r.Header.Get(header)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *Auth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(r.URL.Path, fmt.Sprint(recorder.status)).Inc()
		metrics.HTTPDuration.WithLabelValues(r.URL.Path).Observe(dur.Seconds())

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// Package mockapi is an in-memory stand-in for the EventDeck backend. It
// serves the REST surface and the actuator endpoints the client uses, over
// the embedded seed dataset, and can simulate outages and quirky payloads.
package mockapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/eventdeck/eventdeck-client/internal/auth"
	"github.com/eventdeck/eventdeck-client/internal/logger"
	"github.com/eventdeck/eventdeck-client/internal/seed"
)

const defaultTokenTTL = 24 * time.Hour

// EchoMode makes responses leave out data a real backend may omit, so the
// client's reconciliation paths can be exercised.
type EchoMode struct {
	// SkipCreatorEnrollment creates events without enrolling the creator.
	SkipCreatorEnrollment bool
	// OmitTaskUsername strips assignedToUsername from task write responses.
	OmitTaskUsername bool
	// EmptyToggleBody answers task toggles with an empty 200.
	EmptyToggleBody bool
	// OmitListCounts strips the counts from the event list.
	OmitListCounts bool
}

// Options configures a Server.
type Options struct {
	// Seed defaults to a fresh seed.Load().
	Seed        *seed.Data
	TokenSecret string
	TokenTTL    time.Duration
	// Passwords defaults to auth.FastParams.
	Passwords *auth.Params
	Logger    *slog.Logger
	Now       func() time.Time
}

// Server is an http.Handler serving the mock backend.
type Server struct {
	router   *chi.Mux
	api      huma.API
	data     *dataset
	tokens   *auth.TokenService
	params   auth.Params
	logger   *slog.Logger
	started  time.Time
	requests *requestStats

	outage atomic.Bool
	echo   atomic.Pointer[EchoMode]
}

// New builds a Server over a private copy of the seed.
func New(opts Options) (*Server, error) {
	data := opts.Seed
	if data == nil {
		var err error
		if data, err = seed.Load(); err != nil {
			return nil, err
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	params := auth.FastParams
	if opts.Passwords != nil {
		params = *opts.Passwords
	}
	ttl := opts.TokenTTL
	if ttl == 0 {
		ttl = defaultTokenTTL
	}

	tokens, err := auth.NewTokenService(opts.TokenSecret, ttl)
	if err != nil {
		return nil, err
	}
	ds, err := newDataset(data, params, now)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		data:     ds,
		tokens:   tokens,
		params:   params,
		logger:   logger.OrDiscard(opts.Logger),
		started:  now(),
		requests: newRequestStats(),
	}
	s.echo.Store(&EchoMode{})

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("EventDeck Mock API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	registerErrorHandler()

	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerEventRoutes()
	s.registerParticipantRoutes()
	s.registerTaskRoutes()
	s.registerAdminRoutes()
	s.registerActuatorRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetOutage makes every request fail with 503 while on.
func (s *Server) SetOutage(on bool) {
	s.outage.Store(on)
	s.logger.Info("outage mode changed", "on", on)
}

// SetEchoMode replaces the response quirks.
func (s *Server) SetEchoMode(m EchoMode) {
	s.echo.Store(&m)
}

func (s *Server) echoMode() EchoMode {
	return *s.echo.Load()
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control", "Pragma", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(s.outageGate)
	s.router.Use(s.requests.middleware)
	s.router.Use(s.authenticate)
}

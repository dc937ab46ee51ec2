/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Auth:       Optional bearer-token verification (see auth.go)

ROUTE GROUPS:
  /leaves/*               Leave requests and monthly calendar
  /attendance/*           Attendance records and range report
  /employees/*            Employee management
  /candidates/*           Candidate tracking
  /reconciliation/runs    Sync attempt history
  /scenarios/*            Demo scenarios (dev only)

ROUTE ORDER NOTE:
  /leaves/calendar and /attendance/report are registered before the
  {id} routes so chi does not treat "calendar"/"report" as IDs.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions tune the router's optional layers.
type RouterOptions struct {
	// AuthSecret enables bearer-token auth on mutating routes when set.
	AuthSecret string
	// EnableScenarios mounts the demo scenario endpoints.
	EnableScenarios bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Actor"},
		AllowCredentials: true,
	}))

	var auth func(http.Handler) http.Handler
	if opts.AuthSecret != "" {
		auth = RequireAuth(opts.AuthSecret)
	}

	// Leave routes
	r.Route("/leaves", func(r chi.Router) {
		r.Get("/", h.ListLeaves)
		r.Get("/calendar", h.LeaveCalendar)
		r.Get("/{id}", h.GetLeave)
		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(auth)
			}
			r.Post("/", h.CreateLeave)
			r.Put("/{id}", h.UpdateLeave)
			r.Delete("/{id}", h.DeleteLeave)
		})
	})

	// Attendance routes
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/", h.ListAttendance)
		r.Get("/report", h.AttendanceReport)
		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(auth)
			}
			r.Post("/", h.CreateAttendance)
			r.Put("/{id}", h.UpdateAttendance)
			r.Delete("/{id}", h.DeleteAttendance)
		})
	})

	// Employee routes
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.ListEmployees)
		r.Get("/{id}", h.GetEmployee)
		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(auth)
			}
			r.Post("/", h.SaveEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
		})
	})

	// Candidate routes
	r.Route("/candidates", func(r chi.Router) {
		r.Get("/", h.ListCandidates)
		r.Get("/{id}", h.GetCandidate)
		r.Group(func(r chi.Router) {
			if auth != nil {
				r.Use(auth)
			}
			r.Post("/", h.SaveCandidate)
			r.Delete("/{id}", h.DeleteCandidate)
		})
	})

	// Reconciliation history
	r.Get("/reconciliation/runs", h.ListSyncRuns)

	// Demo scenarios (dev only)
	if opts.EnableScenarios {
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

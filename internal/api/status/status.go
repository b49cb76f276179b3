// Package status is the API router shipped with the binary. It reports the
// health of the startup dependencies.
package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/vigil-api/internal/api"
	"github.com/phrazzld/vigil-api/internal/api/shared"
	"github.com/phrazzld/vigil-api/internal/apperror"
)

// Checker reports whether a dependency is usable.
type Checker interface {
	Check(ctx context.Context) error
}

// Check states.
const (
	StateUp   = "up"
	StateDown = "down"
)

// Overall states.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// CheckResult is one dependency's entry in the report.
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Report is the body of GET /status.
type Report struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Handler serves dependency status. A failing database makes the request fail
// with 503; a failing scanner only degrades the report.
type Handler struct {
	database Checker
	scanner  Checker
	timeout  time.Duration
	now      func() time.Time
}

// NewHandler creates a status handler.
func NewHandler(database, scanner Checker) *Handler {
	return &Handler{
		database: database,
		scanner:  scanner,
		timeout:  2 * time.Second,
		now:      time.Now,
	}
}

// RegisterRoutes adds the status endpoint to r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Method(http.MethodGet, "/status", api.HandlerFunc(h.GetStatus))
}

// Routes returns a router serving only the status endpoint.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// GetStatus handles GET /status.
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.database.Check(ctx); err != nil {
		return apperror.Unavailable("database unavailable")
	}

	report := Report{
		Status:    StatusOK,
		Timestamp: h.now().UTC(),
		Checks: map[string]CheckResult{
			"database": {Status: StateUp},
		},
	}

	if err := h.scanner.Check(ctx); err != nil {
		report.Status = StatusDegraded
		report.Checks["scanner"] = CheckResult{Status: StateDown, Message: "scanner inactive"}
	} else {
		report.Checks["scanner"] = CheckResult{Status: StateUp}
	}

	shared.RespondWithJSON(w, http.StatusOK, report)
	return nil
}

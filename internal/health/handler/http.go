// Package handler serves readiness checks for load balancers and orchestration.
package handler

import (
	"context"
	"net/http"
	"time"

	"octagram/backend/internal/server/httpx"
)

// Pinger checks database connectivity (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks the authz policy engine (e.g. the OPA evaluator).
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler answers GET /healthz. A nil Pinger or PolicyChecker skips that
// check, so the handler stays usable in partial setups.
type Handler struct {
	pinger  Pinger
	checker PolicyChecker
}

// NewHandler returns a health Handler with the given dependencies.
func NewHandler(pinger Pinger, checker PolicyChecker) *Handler {
	return &Handler{pinger: pinger, checker: checker}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.pinger != nil {
		if err := h.pinger.PingContext(ctx); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.checker != nil {
		if err := h.checker.HealthCheck(ctx); err != nil {
			checks["policy"] = err.Error()
			healthy = false
		} else {
			checks["policy"] = "ok"
		}
	}

	resp := healthResponse{Status: "ok", Checks: checks}
	code := http.StatusOK
	if !healthy {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	httpx.WriteJSON(w, code, resp)
}

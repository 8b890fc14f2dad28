// Package health implements the liveness probe.
package health

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
)

// Handler handles GET /health.
type Handler struct {
	started time.Time
}

// New creates the health handler; uptime counts from now.
func New() *Handler {
	return &Handler{started: time.Now()}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.OK(map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	}))
}

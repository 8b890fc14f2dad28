// Package logout implements the stateless logout acknowledgement. Tokens are
// not revoked server-side; the client discards them.
package logout

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
)

// New returns the POST /api/auth/logout handler.
//
// @Summary Log out
// @Description Acknowledges logout. No server-side token invalidation occurs.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/auth/logout [post]
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OKMessage("Logged out successfully", nil))
	}
}

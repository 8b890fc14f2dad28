// Package verifyemail implements the verification-token consumption handler.
// The token arrives as a query parameter from the emailed link.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// Service is the auth flow behind this handler.
type Service interface {
	VerifyEmail(ctx context.Context, verificationToken string) error
}

// Handler handles GET /api/auth/verify-email.
type Handler struct {
	log  *slog.Logger
	auth Service
}

// New creates the verify-email handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{log: log, auth: auth}
}

// ServeHTTP godoc
// @Summary Verify an email address
// @Description Consumes the emailed verification token and marks the account verified.
// @Tags Auth
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid verification token"
// @Router /api/auth/verify-email [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid verification token"))
		return
	}

	if err := h.auth.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid verification token"))
			return
		}
		log.Error("verify email failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.OKMessage("Email verified successfully", nil))
}

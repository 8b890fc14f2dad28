// Package resetpassword implements the reset-token consumption handler.
package resetpassword

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// Request carries the reset token and replacement password.
type Request struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// Service is the auth flow behind this handler.
type Service interface {
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
}

// Handler handles POST /api/auth/reset-password.
type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

// New creates the reset-password handler.
func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Reset the password
// @Description Consumes an unexpired reset token and stores the new password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Token and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Invalid or expired token"
// @Failure 422 {object} response.ErrorResponse "Validation failure"
// @Router /api/auth/reset-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resetpassword"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid or expired token"))
			return
		}
		log.Error("reset password failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password reset")
	render.JSON(w, r, response.OKMessage("Password reset successful", nil))
}

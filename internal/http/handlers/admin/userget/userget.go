// Package userget implements the single-user admin read handler.
package userget

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// Service is the admin flow behind this handler.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Handler handles GET /api/admin/users/{id}.
type Handler struct {
	log   *slog.Logger
	admin Service
}

// New creates the single-user read handler.
func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{log: log, admin: admin}
}

// ServeHTTP godoc
// @Summary Get a user
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User uid"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /api/admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userget"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "id")
	user, err := h.admin.GetUser(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}
		log.Error("failed to load user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(user))
}

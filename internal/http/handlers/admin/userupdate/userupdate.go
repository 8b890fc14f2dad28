// Package userupdate implements the admin user-override handler for plan,
// role and the verified flag.
package userupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/adblockpro/backend/internal/authz"
	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/services/admin"
	"github.com/adblockpro/backend/internal/storage/repository"
)

// Request carries the overridable fields; nil leaves a field as is.
type Request struct {
	Plan       *string `json:"plan" validate:"omitempty,oneof=free pro teams"`
	Role       *string `json:"role" validate:"omitempty,oneof=user admin superadmin"`
	IsVerified *bool   `json:"isVerified"`
}

// Service is the admin flow behind this handler.
type Service interface {
	UpdateUser(ctx context.Context, userUID string, override admin.UserOverride) (*models.User, error)
}

// Handler handles PUT /api/admin/users/{id}.
type Handler struct {
	log      *slog.Logger
	admin    Service
	validate *validator.Validate
}

// New creates the user override handler.
func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{
		log:      log,
		admin:    admin,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Override user fields
// @Description Changes plan, role or verified flag. Only superadmins may grant admin roles.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User uid"
// @Param request body Request true "Fields to override"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "User not found"
// @Router /api/admin/users/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userupdate"

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

	if req.Role != nil {
		actorRole, _ := middlewarectx.RoleFromContext(r.Context())
		if !authz.CanAssignRole(actorRole, *req.Role) {
			log.Warn("role assignment denied", slog.String("role", *req.Role))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Not authorized to access this route"))
			return
		}
	}

	userUID := chi.URLParam(r, "id")
	user, err := h.admin.UpdateUser(r.Context(), userUID, admin.UserOverride{
		Plan:     req.Plan,
		Role:     req.Role,
		Verified: req.IsVerified,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
			return
		}
		log.Error("user update failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("user overridden", slog.String("user_uid", userUID))
	render.JSON(w, r, response.OK(user))
}

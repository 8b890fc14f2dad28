// Package settingsupdate implements the settings merge handler. Each block
// is a shallow merge: toggles the client did not send keep their values.
package settingsupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/adblockpro/backend/internal/http/middlewarectx"
	"github.com/adblockpro/backend/internal/http/response"
	"github.com/adblockpro/backend/internal/lib/sl"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/services/user"
)

// Request carries the optional settings patches.
type Request struct {
	Notifications *user.NotificationsPatch `json:"notifications"`
	Privacy       *user.PrivacyPatch       `json:"privacy"`
}

// Service is the self-service flow behind this handler.
type Service interface {
	UpdateSettings(ctx context.Context, userUID string, notifications *user.NotificationsPatch, privacy *user.PrivacyPatch) (*models.Settings, error)
}

// Handler handles PUT /api/users/settings.
type Handler struct {
	log   *slog.Logger
	users Service
}

// New creates the settings handler.
func New(log *slog.Logger, users Service) *Handler {
	return &Handler{log: log, users: users}
}

// ServeHTTP godoc
// @Summary Update notification and privacy settings
// @Description Shallow-merges the provided toggles into the stored blocks.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Settings patches"
// @Success 200 {object} response.Response
// @Router /api/users/settings [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.settingsupdate"

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

	userUID, _ := middlewarectx.UserUIDFromContext(r.Context())
	settings, err := h.users.UpdateSettings(r.Context(), userUID, req.Notifications, req.Privacy)
	if err != nil {
		log.Error("settings update failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK(settings))
}

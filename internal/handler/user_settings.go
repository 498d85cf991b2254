package handler

import (
	"log/slog"
	"net/http"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
	"halidom/internal/service"
)

// UserSettingsHandler handles per-user configuration HTTP requests
type UserSettingsHandler struct {
	service *service.UserSettingsService
	logger  *slog.Logger
}

// NewUserSettingsHandler creates a new user settings handler
func NewUserSettingsHandler(service *service.UserSettingsService, logger *slog.Logger) *UserSettingsHandler {
	return &UserSettingsHandler{
		service: service,
		logger:  logger,
	}
}

// GetSettings retrieves the caller's settings
// GET /api/users/me/settings
func (h *UserSettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUID(httputil.GetUserID(r))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	settings, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}

// UpdateSettings applies a partial settings update for the caller
// PATCH /api/users/me/settings
func (h *UserSettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUUID(httputil.GetUserID(r))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req models.UpdateSettingsRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	settings, err := h.service.Update(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, settings)
}

package handler

import (
	"log/slog"
	"net/http"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
	"halidom/internal/service/sync"
)

// KeyPointHandler handles tier-list key point HTTP requests
type KeyPointHandler struct {
	service *sync.KeyPointService
	logger  *slog.Logger
}

// NewKeyPointHandler creates a new key point handler
func NewKeyPointHandler(service *sync.KeyPointService, logger *slog.Logger) *KeyPointHandler {
	return &KeyPointHandler{
		service: service,
		logger:  logger,
	}
}

// GetAll returns every key point entry
// GET /api/key-points
func (h *KeyPointHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"key_points": entries})
}

type syncKeyPointsPayload struct {
	Language string                 `json:"language"`
	Entries  []models.KeyPointInput `json:"entries"`
}

// Sync replaces the key point set for one language
// PUT /api/key-points
func (h *KeyPointHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var payload syncKeyPointsPayload
	if err := httputil.ParseJSON(w, r, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Update(r.Context(), payload.Language, payload.Entries); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"synced": len(payload.Entries)})
}

package handler

import (
	"log/slog"
	"net/http"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
	"halidom/internal/service/sync"
)

// UnitNameHandler handles unit-name reference HTTP requests
type UnitNameHandler struct {
	service *sync.UnitNameService
	logger  *slog.Logger
}

// NewUnitNameHandler creates a new unit name handler
func NewUnitNameHandler(service *sync.UnitNameService, logger *slog.Logger) *UnitNameHandler {
	return &UnitNameHandler{
		service: service,
		logger:  logger,
	}
}

// GetAll returns every unit-name entry
// GET /api/unit-names
func (h *UnitNameHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetAll(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{"unit_names": entries})
}

type syncUnitNamesPayload struct {
	Language string                 `json:"language"`
	Entries  []models.UnitNameInput `json:"entries"`
}

// Sync replaces the unit-name set for one language
// PUT /api/unit-names
func (h *UnitNameHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var payload syncUnitNamesPayload
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

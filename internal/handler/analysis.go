package handler

import (
	"log/slog"
	"net/http"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
	"halidom/internal/service/post"
)

// AnalysisHandler handles unit-analysis HTTP requests
type AnalysisHandler struct {
	service *post.AnalysisService
	logger  *slog.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *post.AnalysisService, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// Publish creates one analysis revision
// POST /api/analyses
func (h *AnalysisHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req post.PublishAnalysisRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sequenceID, err := h.service.Publish(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, map[string]any{
		"sequence_id": sequenceID,
		"language":    req.Language,
	})
}

// Get retrieves one analysis by sequence id
// GET /api/analyses/{id}?lang=en&forEdit=1
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
	sequenceID, err := pathSequenceID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid sequence id")
		return
	}

	language := r.URL.Query().Get("lang")
	incrementView := !queryBool(r, "forEdit", false)

	result, err := h.service.Get(r.Context(), sequenceID, language, incrementView)
	if err != nil {
		handleError(w, err)
		return
	}
	if result == nil {
		httputil.RespondError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// editAnalysisPayload is the wire shape of an analysis edit. Title uses
// tri-state decoding so an explicit null is rejected instead of ignored.
type editAnalysisPayload struct {
	Language string                  `json:"language"`
	UnitType string                  `json:"unit_type"`
	Title    httputil.OptionalString `json:"title"`
	Fields   models.JSONMap          `json:"fields"`
	Note     string                  `json:"note"`
}

// Edit updates one analysis revision
// PATCH /api/analyses/{id}
func (h *AnalysisHandler) Edit(w http.ResponseWriter, r *http.Request) {
	sequenceID, err := pathSequenceID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid sequence id")
		return
	}

	var payload editAnalysisPayload
	if err := httputil.ParseJSON(w, r, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Title.Present && payload.Title.Value == nil {
		httputil.RespondError(w, http.StatusBadRequest, "Title cannot be null")
		return
	}

	req := post.EditAnalysisRequest{
		SequenceID: sequenceID,
		Language:   payload.Language,
		UnitType:   models.UnitType(payload.UnitType),
		Title:      payload.Title.Value,
		Fields:     payload.Fields,
		Note:       payload.Note,
	}

	outcome, err := h.service.Edit(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	respondEditOutcome(w, outcome)
}

// List returns one page of analysis summaries
// GET /api/analyses?lang=en&start=0&limit=20
func (h *AnalysisHandler) List(w http.ResponseWriter, r *http.Request) {
	language := r.URL.Query().Get("lang")
	start := queryInt(r, "start", 0)
	limit := queryInt(r, "limit", 0)

	result, err := h.service.List(r.Context(), language, start, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Availability reports whether a sequence id can be published
// GET /api/analyses/availability?lang=en&id=12
func (h *AnalysisHandler) Availability(w http.ResponseWriter, r *http.Request) {
	respondAvailability(w, r, func(r *http.Request, language string, sequenceID *int64) (bool, error) {
		return h.service.IsIDAvailable(r.Context(), language, sequenceID)
	})
}

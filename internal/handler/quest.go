package handler

import (
	"log/slog"
	"net/http"

	"halidom/internal/domain/models"
	"halidom/internal/httputil"
	"halidom/internal/service/post"
)

// QuestHandler handles quest write-up HTTP requests
type QuestHandler struct {
	service *post.QuestService
	logger  *slog.Logger
}

// NewQuestHandler creates a new quest handler
func NewQuestHandler(service *post.QuestService, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{
		service: service,
		logger:  logger,
	}
}

// Publish creates one quest write-up
// POST /api/quests
func (h *QuestHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req post.PublishQuestRequest
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

// Get retrieves one quest write-up by sequence id
// GET /api/quests/{id}?lang=en&forEdit=1
func (h *QuestHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		httputil.RespondError(w, http.StatusNotFound, "Quest not found")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

type editQuestPayload struct {
	Language string                  `json:"language"`
	Title    httputil.OptionalString `json:"title"`
	Fields   models.JSONMap          `json:"fields"`
	Note     string                  `json:"note"`
}

// Edit updates one quest write-up
// PATCH /api/quests/{id}
func (h *QuestHandler) Edit(w http.ResponseWriter, r *http.Request) {
	sequenceID, err := pathSequenceID(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid sequence id")
		return
	}

	var payload editQuestPayload
	if err := httputil.ParseJSON(w, r, &payload); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Title.Present && payload.Title.Value == nil {
		httputil.RespondError(w, http.StatusBadRequest, "Title cannot be null")
		return
	}

	outcome, err := h.service.Edit(r.Context(), &post.EditQuestRequest{
		SequenceID: sequenceID,
		Language:   payload.Language,
		Title:      payload.Title.Value,
		Fields:     payload.Fields,
		Note:       payload.Note,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	respondEditOutcome(w, outcome)
}

// List returns one page of quest summaries
// GET /api/quests?lang=en&start=0&limit=20
func (h *QuestHandler) List(w http.ResponseWriter, r *http.Request) {
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
// GET /api/quests/availability?lang=en&id=12
func (h *QuestHandler) Availability(w http.ResponseWriter, r *http.Request) {
	respondAvailability(w, r, func(r *http.Request, language string, sequenceID *int64) (bool, error) {
		return h.service.IsIDAvailable(r.Context(), language, sequenceID)
	})
}

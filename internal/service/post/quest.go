package post

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"halidom/internal/config"
	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// QuestService is the specialized controller for quest write-ups.
type QuestService struct {
	lifecycle *Lifecycle
	logger    *slog.Logger
}

// NewQuestService creates a new quest service
func NewQuestService(sequences repositories.SequenceAllocator, posts repositories.PostRepository, logger *slog.Logger) *QuestService {
	return &QuestService{
		lifecycle: NewLifecycle(models.CollectionQuests, sequences, posts, logger),
		logger:    logger,
	}
}

// PublishQuestRequest is the payload for publishing one quest write-up.
type PublishQuestRequest struct {
	SequenceID *int64              `json:"sequence_id"`
	Language   string              `json:"language"`
	Title      string              `json:"title"`
	Content    models.QuestContent `json:"content"`
}

func (r *PublishQuestRequest) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
	)
}

// Publish validates the payload and publishes the quest write-up.
func (s *QuestService) Publish(ctx context.Context, req *PublishQuestRequest) (int64, error) {
	if err := req.validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields, err := req.Content.ToMap()
	if err != nil {
		return 0, fmt.Errorf("encode quest content: %w", err)
	}

	return s.lifecycle.Publish(ctx, &PublishRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Content:    fields,
	})
}

// Get resolves one quest write-up. Returns (nil, nil) when absent.
func (s *QuestService) Get(ctx context.Context, sequenceID int64, language string, incrementView bool) (*models.GetResult, error) {
	return s.lifecycle.Get(ctx, sequenceID, language, incrementView)
}

// EditQuestRequest is the payload for editing one quest write-up.
type EditQuestRequest struct {
	SequenceID int64          `json:"sequence_id"`
	Language   string         `json:"language"`
	Title      *string        `json:"title"`
	Fields     models.JSONMap `json:"fields"`
	Note       string         `json:"note"`
}

// Edit applies a content edit to one quest write-up.
func (s *QuestService) Edit(ctx context.Context, req *EditQuestRequest) (models.EditOutcome, error) {
	return s.lifecycle.Edit(ctx, &EditRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Fields:     req.Fields,
		Note:       req.Note,
	})
}

// List returns one page of quest summaries for the language.
func (s *QuestService) List(ctx context.Context, language string, start, limit int) (*models.ListResult, error) {
	return s.lifecycle.List(ctx, language, start, limit, questSummary)
}

// IsIDAvailable reports whether the id can be published in the language.
func (s *QuestService) IsIDAvailable(ctx context.Context, language string, sequenceID *int64) (bool, error) {
	return s.lifecycle.IsIDAvailable(ctx, language, sequenceID)
}

func questSummary(p *models.SequencedPost) models.JSONMap {
	return models.JSONMap{
		"sequence_id":   p.SequenceID,
		"language":      p.Language,
		"title":         p.Title,
		"quest_id":      p.Content["quest_id"],
		"boss":          p.Content["boss"],
		"view_count":    p.ViewCount,
		"date_modified": p.DateModified,
	}
}

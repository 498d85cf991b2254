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

// MiscService is the specialized controller for misc articles.
type MiscService struct {
	lifecycle *Lifecycle
	logger    *slog.Logger
}

// NewMiscService creates a new misc article service
func NewMiscService(sequences repositories.SequenceAllocator, posts repositories.PostRepository, logger *slog.Logger) *MiscService {
	return &MiscService{
		lifecycle: NewLifecycle(models.CollectionArticles, sequences, posts, logger),
		logger:    logger,
	}
}

// PublishMiscRequest is the payload for publishing one misc article.
type PublishMiscRequest struct {
	SequenceID *int64             `json:"sequence_id"`
	Language   string             `json:"language"`
	Title      string             `json:"title"`
	Content    models.MiscContent `json:"content"`
}

func (r *PublishMiscRequest) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
	)
}

// Publish validates the payload and publishes the article.
func (s *MiscService) Publish(ctx context.Context, req *PublishMiscRequest) (int64, error) {
	if err := req.validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields, err := req.Content.ToMap()
	if err != nil {
		return 0, fmt.Errorf("encode article content: %w", err)
	}

	return s.lifecycle.Publish(ctx, &PublishRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Content:    fields,
	})
}

// Get resolves one article. Returns (nil, nil) when absent.
func (s *MiscService) Get(ctx context.Context, sequenceID int64, language string, incrementView bool) (*models.GetResult, error) {
	return s.lifecycle.Get(ctx, sequenceID, language, incrementView)
}

// EditMiscRequest is the payload for editing one misc article.
type EditMiscRequest struct {
	SequenceID int64          `json:"sequence_id"`
	Language   string         `json:"language"`
	Title      *string        `json:"title"`
	Fields     models.JSONMap `json:"fields"`
	Note       string         `json:"note"`
}

// Edit applies a content edit to one article.
func (s *MiscService) Edit(ctx context.Context, req *EditMiscRequest) (models.EditOutcome, error) {
	return s.lifecycle.Edit(ctx, &EditRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Fields:     req.Fields,
		Note:       req.Note,
	})
}

// List returns one page of article summaries for the language.
func (s *MiscService) List(ctx context.Context, language string, start, limit int) (*models.ListResult, error) {
	return s.lifecycle.List(ctx, language, start, limit, miscSummary)
}

// IsIDAvailable reports whether the id can be published in the language.
func (s *MiscService) IsIDAvailable(ctx context.Context, language string, sequenceID *int64) (bool, error) {
	return s.lifecycle.IsIDAvailable(ctx, language, sequenceID)
}

func miscSummary(p *models.SequencedPost) models.JSONMap {
	return models.JSONMap{
		"sequence_id":   p.SequenceID,
		"language":      p.Language,
		"title":         p.Title,
		"tags":          p.Content["tags"],
		"view_count":    p.ViewCount,
		"date_modified": p.DateModified,
	}
}

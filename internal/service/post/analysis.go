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

// AnalysisService is the specialized controller for unit analyses. It
// supplies the analysis document shape, the unit-type filter and the
// tagged-union expansion on top of the generic lifecycle operations.
type AnalysisService struct {
	lifecycle *Lifecycle
	logger    *slog.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(sequences repositories.SequenceAllocator, posts repositories.PostRepository, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		lifecycle: NewLifecycle(models.CollectionAnalyses, sequences, posts, logger),
		logger:    logger,
	}
}

// PublishAnalysisRequest is the payload for publishing one analysis revision.
type PublishAnalysisRequest struct {
	SequenceID *int64                    `json:"sequence_id"`
	Language   string                    `json:"language"`
	Title      string                    `json:"title"`
	UnitID     string                    `json:"unit_id"`
	UnitType   models.UnitType           `json:"unit_type"`
	Summary    string                    `json:"summary"`
	Character  *models.CharacterSections `json:"character"`
	Dragon     *models.DragonSections    `json:"dragon"`
}

func (r *PublishAnalysisRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Language, validation.Required),
		validation.Field(&r.Title, validation.Required, validation.Length(1, config.MaxTitleLength)),
		validation.Field(&r.UnitID, validation.Required),
		validation.Field(&r.UnitType, validation.Required),
	)
	if err != nil {
		return err
	}

	// The section must match the unit type tag.
	switch r.UnitType {
	case models.UnitTypeCharacter:
		if r.Dragon != nil {
			return fmt.Errorf("dragon sections not allowed on a character analysis")
		}
	case models.UnitTypeDragon:
		if r.Character != nil {
			return fmt.Errorf("character sections not allowed on a dragon analysis")
		}
	default:
		return fmt.Errorf("unknown unit type %q", r.UnitType)
	}
	return nil
}

// Publish validates the payload, builds the analysis document and publishes
// it through the generic lifecycle. Returns the sequence id.
func (s *AnalysisService) Publish(ctx context.Context, req *PublishAnalysisRequest) (int64, error) {
	if err := req.validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	content := models.AnalysisContent{
		UnitID:    req.UnitID,
		UnitType:  req.UnitType,
		Summary:   req.Summary,
		Character: req.Character,
		Dragon:    req.Dragon,
	}
	fields, err := content.ToMap()
	if err != nil {
		return 0, fmt.Errorf("encode analysis content: %w", err)
	}

	return s.lifecycle.Publish(ctx, &PublishRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Content:    fields,
	})
}

// AnalysisGetResult pairs the expanded analysis view with the fallback flag
// and the other languages the id exists in.
type AnalysisGetResult struct {
	Analysis       *models.AnalysisView `json:"analysis"`
	IsAltLanguage  bool                 `json:"is_alt_language"`
	OtherLanguages []string             `json:"other_languages"`
}

// Get resolves one analysis for display (incrementView true) or editing.
// Returns (nil, nil) when the sequence id exists in no language.
func (s *AnalysisService) Get(ctx context.Context, sequenceID int64, language string, incrementView bool) (*AnalysisGetResult, error) {
	result, err := s.lifecycle.Get(ctx, sequenceID, language, incrementView)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}

	view, err := models.ExpandAnalysis(result.Post)
	if err != nil {
		return nil, err
	}

	return &AnalysisGetResult{
		Analysis:       view,
		IsAltLanguage:  result.IsAltLanguage,
		OtherLanguages: result.OtherLanguages,
	}, nil
}

// EditAnalysisRequest is the payload for editing one analysis revision.
// Nil fields are left untouched.
type EditAnalysisRequest struct {
	SequenceID int64           `json:"sequence_id"`
	Language   string          `json:"language"`
	UnitType   models.UnitType `json:"unit_type"` // optional secondary-key filter
	Title      *string         `json:"title"`
	Fields     models.JSONMap  `json:"fields"`
	Note       string          `json:"note"`
}

// Edit applies a content edit. When the request carries a unit type it is
// matched as an additional filter, so an edit addressed to the wrong type
// reports not-found instead of clobbering the other variant.
func (s *AnalysisService) Edit(ctx context.Context, req *EditAnalysisRequest) (models.EditOutcome, error) {
	var extra models.JSONMap
	if req.UnitType != "" {
		if !req.UnitType.Valid() {
			return models.EditNotFound, fmt.Errorf("%w: unknown unit type %q", domain.ErrValidation, req.UnitType)
		}
		extra = models.JSONMap{"unit_type": string(req.UnitType)}
	}

	return s.lifecycle.Edit(ctx, &EditRequest{
		SequenceID: req.SequenceID,
		Language:   req.Language,
		Title:      req.Title,
		Fields:     req.Fields,
		Extra:      extra,
		Note:       req.Note,
	})
}

// List returns one page of analysis summaries for the language.
func (s *AnalysisService) List(ctx context.Context, language string, start, limit int) (*models.ListResult, error) {
	return s.lifecycle.List(ctx, language, start, limit, analysisSummary)
}

// IsIDAvailable reports whether the id can be published in the language.
func (s *AnalysisService) IsIDAvailable(ctx context.Context, language string, sequenceID *int64) (bool, error) {
	return s.lifecycle.IsIDAvailable(ctx, language, sequenceID)
}

// analysisSummary projects a revision to its list entry.
func analysisSummary(p *models.SequencedPost) models.JSONMap {
	return models.JSONMap{
		"sequence_id":   p.SequenceID,
		"language":      p.Language,
		"title":         p.Title,
		"unit_id":       p.Content["unit_id"],
		"unit_type":     p.Content["unit_type"],
		"view_count":    p.ViewCount,
		"date_modified": p.DateModified,
	}
}

package post

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"halidom/internal/config"
	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// Default pagination for list operations.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Lifecycle is the generic controller for one sequenced-post collection:
// publish, get with alt-language fallback, two-phase edit, paginated list
// and id-availability checks. Specialized services supply the document shape
// and transforms; this type owns the allocation/fallback/update algorithm.
type Lifecycle struct {
	collection string
	sequences  repositories.SequenceAllocator
	posts      repositories.PostRepository
	logger     *slog.Logger
}

// NewLifecycle creates a lifecycle controller for one collection. The
// allocator is injected per store connection rather than held as package
// state, so every controller shares one counter source.
func NewLifecycle(collection string, sequences repositories.SequenceAllocator, posts repositories.PostRepository, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		collection: collection,
		sequences:  sequences,
		posts:      posts,
		logger:     logger,
	}
}

// Collection returns the logical collection this controller serves.
func (l *Lifecycle) Collection() string {
	return l.collection
}

// PublishRequest carries an already-validated payload for a new revision.
type PublishRequest struct {
	// SequenceID, when set, is the caller's desired id - used for explicit
	// cross-language publishing against an existing sequence id. When nil a
	// fresh id is minted.
	SequenceID *int64
	Language   string
	Title      string
	Content    models.JSONMap
}

// Publish creates one language revision and returns its sequence id.
// A desired id beyond the next to be issued is rejected with a sequence-skip
// error before any write; a desired id equal to the next one consumes the
// allocator so later mints cannot reissue it.
func (l *Lifecycle) Publish(ctx context.Context, req *PublishRequest) (int64, error) {
	if !models.IsSupportedLanguage(req.Language) {
		return 0, fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, req.Language)
	}

	var sequenceID int64
	if req.SequenceID == nil {
		id, err := l.sequences.NextSequenceID(ctx, l.collection, true)
		if err != nil {
			return 0, err
		}
		sequenceID = id
	} else {
		desired := *req.SequenceID
		if desired < 1 {
			return 0, fmt.Errorf("%w: sequence id must be positive", domain.ErrValidation)
		}

		peek, err := l.sequences.NextSequenceID(ctx, l.collection, false)
		if err != nil {
			return 0, err
		}
		next := peek + 1

		if desired > next {
			return 0, &domain.SequenceSkipError{Collection: l.collection, Desired: desired, Next: next}
		}
		if desired == next {
			issued, err := l.sequences.NextSequenceID(ctx, l.collection, true)
			if err != nil {
				return 0, err
			}
			if issued != desired {
				// Lost a race against a concurrent mint; the pair-level
				// unique index still protects the insert below.
				l.logger.Warn("sequence consumed concurrently",
					"collection", l.collection,
					"desired", desired,
					"issued", issued,
				)
			}
		}
		sequenceID = desired
	}

	now := time.Now().UTC()
	content := req.Content
	if content == nil {
		content = models.JSONMap{}
	}

	post := &models.SequencedPost{
		Sequenced: models.Sequenced{SequenceID: sequenceID, Language: req.Language},
		Title:     req.Title,
		Content:   content,
		Audit: models.Audit{
			DatePublished: now,
			DateModified:  now,
			EditNotes:     []models.EditNote{},
		},
	}

	if err := l.posts.Insert(ctx, l.collection, post); err != nil {
		return 0, err
	}

	l.logger.Info("post published",
		"collection", l.collection,
		"sequence_id", sequenceID,
		"language", req.Language,
	)

	return sequenceID, nil
}

// Get resolves a revision for display or editing. Display reads
// (incrementView true) also gather the other languages the sequence id
// exists in and bump the view count of the revision actually returned;
// editing reads skip both. When the requested language is absent but the
// sequence id exists in another language, that revision is substituted and
// flagged. Returns (nil, nil) when the id exists in no language at all.
func (l *Lifecycle) Get(ctx context.Context, sequenceID int64, language string, incrementView bool) (*models.GetResult, error) {
	otherLanguages := []string{}
	if incrementView {
		langs, err := l.posts.Languages(ctx, l.collection, sequenceID, language)
		if err != nil {
			return nil, err
		}
		otherLanguages = langs
	}

	var inc int64
	if incrementView {
		inc = 1
	}

	post, err := l.posts.FindAndCountView(ctx, l.collection, sequenceID, language, inc)
	if err != nil {
		return nil, err
	}
	if post != nil {
		return &models.GetResult{Post: post, IsAltLanguage: false, OtherLanguages: otherLanguages}, nil
	}

	// Alt-language fallback: any revision of this sequence id.
	post, err = l.posts.FindAnyLanguageAndCountView(ctx, l.collection, sequenceID, inc)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, nil
	}

	return &models.GetResult{Post: post, IsAltLanguage: true, OtherLanguages: otherLanguages}, nil
}

// EditRequest carries an already-validated edit payload.
type EditRequest struct {
	SequenceID int64
	Language   string

	// Title replaces the post title when non-nil.
	Title *string

	// Fields are content fields to set. Protected fields are stripped before
	// the update regardless of what the caller passed in.
	Fields models.JSONMap

	// Extra is an additional equality filter supplied by the specialized
	// controller (e.g. the unit type of an analysis).
	Extra models.JSONMap

	// Note is recorded in the edit history when the edit changed anything.
	Note string
}

// Edit applies a two-phase update: content first, then - only if a field
// actually changed value - the modification timestamp and one appended edit
// note. Phase 1 alone is atomic; a crash between phases can leave updated
// content with a stale timestamp, which callers must tolerate.
func (l *Lifecycle) Edit(ctx context.Context, req *EditRequest) (models.EditOutcome, error) {
	if req.SequenceID == 0 || req.Language == "" {
		return models.EditNotFound, nil
	}
	if len(req.Note) > config.MaxEditNoteLength {
		return models.EditNotFound, fmt.Errorf("%w: edit note longer than %d characters", domain.ErrValidation, config.MaxEditNoteLength)
	}

	update := &repositories.ContentUpdate{
		Title:  req.Title,
		Fields: models.StripProtectedFields(req.Fields),
		Extra:  req.Extra,
	}

	matched, changed, err := l.posts.UpdateContent(ctx, l.collection, req.SequenceID, req.Language, update)
	if err != nil {
		return models.EditNotFound, err
	}
	if !matched {
		return models.EditNotFound, nil
	}
	if !changed {
		// Saving with no changes is idempotent: no timestamp bump, no note.
		return models.EditNoChange, nil
	}

	note := models.EditNote{Timestamp: time.Now().UTC(), Note: req.Note}
	if err := l.posts.AppendEditNote(ctx, l.collection, req.SequenceID, req.Language, note); err != nil {
		return models.EditUpdated, err
	}

	l.logger.Info("post edited",
		"collection", l.collection,
		"sequence_id", req.SequenceID,
		"language", req.Language,
	)

	return models.EditUpdated, nil
}

// Transform maps a raw revision to a caller-defined summary shape for lists.
type Transform func(*models.SequencedPost) models.JSONMap

// List returns one page of summaries in the given language, most recently
// modified first, plus the unpaginated total for pagination UI.
func (l *Lifecycle) List(ctx context.Context, language string, start, limit int, transform Transform) (*models.ListResult, error) {
	if start < 0 {
		start = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	posts, err := l.posts.List(ctx, l.collection, language, start, limit)
	if err != nil {
		return nil, err
	}

	total, err := l.posts.Count(ctx, l.collection, language)
	if err != nil {
		return nil, err
	}

	entries := make([]models.JSONMap, 0, len(posts))
	for i := range posts {
		entries = append(entries, transform(&posts[i]))
	}

	return &models.ListResult{Entries: entries, TotalCount: total}, nil
}

// IsIDAvailable reports whether a sequence id can be used for a new revision
// in the given language. A nil id is always available (one will be minted at
// publish time). The next id to be issued is available; an already-issued id
// is available only in languages it has not been used in; anything beyond
// the next id, or below 1, is not.
func (l *Lifecycle) IsIDAvailable(ctx context.Context, language string, sequenceID *int64) (bool, error) {
	if sequenceID == nil {
		return true, nil
	}
	id := *sequenceID
	if id < 1 {
		return false, nil
	}

	peek, err := l.sequences.NextSequenceID(ctx, l.collection, false)
	if err != nil {
		return false, err
	}
	next := peek + 1

	if id > next {
		return false, nil
	}
	if id == next {
		return true, nil
	}

	exists, err := l.posts.Exists(ctx, l.collection, id, language)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

package repositories

import (
	"context"

	"halidom/internal/domain/models"
)

// ContentUpdate is the phase-1 payload of an edit: the content fields to set.
// Protected fields have already been stripped by the service layer.
type ContentUpdate struct {
	// Title replaces the post title when non-nil.
	Title *string

	// Fields are merged into the content map ($set semantics per field).
	Fields models.JSONMap

	// Extra is an additional equality filter the specialized controller
	// supplies, matched against the content map (e.g. unit type). Nil means
	// no extra filtering.
	Extra models.JSONMap
}

// PostRepository is the generic store access for sequenced posts. Every
// method addresses one logical collection; the implementation resolves it to
// a physical table. The unique compound index on (sequence_id, language) is
// guaranteed to exist before any write (see postgres.EnsureSchema).
type PostRepository interface {
	// Insert creates a new revision. The store's unique index on
	// (sequence_id, language) rejects an already-used pair; that failure is
	// translated to a domain conflict error, everything else propagates
	// unchanged. A failed insert performs no partial write.
	Insert(ctx context.Context, collection string, post *models.SequencedPost) error

	// FindAndCountView atomically resolves the revision matching the exact
	// (sequenceID, language) pair and adds inc to its view count, returning
	// the updated document. Returns (nil, nil) when no revision matches.
	FindAndCountView(ctx context.Context, collection string, sequenceID int64, language string, inc int64) (*models.SequencedPost, error)

	// FindAnyLanguageAndCountView is the alt-language fallback: same
	// operation filtered by sequence id alone.
	FindAnyLanguageAndCountView(ctx context.Context, collection string, sequenceID int64, inc int64) (*models.SequencedPost, error)

	// Languages lists the languages in which sequenceID exists, excluding
	// the given one.
	Languages(ctx context.Context, collection string, sequenceID int64, exclude string) ([]string, error)

	// Exists reports whether a revision exists for the exact pair.
	Exists(ctx context.Context, collection string, sequenceID int64, language string) (bool, error)

	// UpdateContent applies the phase-1 content update. matched reports
	// whether any document satisfied the filter; changed whether a field
	// actually changed value. The update itself is atomic.
	UpdateContent(ctx context.Context, collection string, sequenceID int64, language string, update *ContentUpdate) (matched, changed bool, err error)

	// AppendEditNote is the phase-2 audit update: sets the modification
	// timestamp and appends one note to the edit history.
	AppendEditNote(ctx context.Context, collection string, sequenceID int64, language string, note models.EditNote) error

	// List returns one page of revisions in the given language, most
	// recently modified first.
	List(ctx context.Context, collection string, language string, start, limit int) ([]models.SequencedPost, error)

	// Count returns the number of revisions matching the language filter
	// alone, ignoring pagination.
	Count(ctx context.Context, collection string, language string) (int64, error)
}

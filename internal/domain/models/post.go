package models

import (
	"time"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// EditNote is one append-only audit record of a content-changing edit.
// Notes are never mutated or removed once appended.
type EditNote struct {
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// Sequenced carries the natural key shared by every revision of a logical
// article: the sequence id spans languages, the language picks the revision.
type Sequenced struct {
	SequenceID int64  `json:"sequence_id" db:"sequence_id"`
	Language   string `json:"language" db:"language"`
}

// Viewable carries display-read bookkeeping. The count is only advanced by
// reads for display, never by reads for editing.
type Viewable struct {
	ViewCount int64 `json:"view_count" db:"view_count"`
}

// Audit carries the publish/modification timestamps and the edit history.
// DatePublished is fixed at creation; DateModified advances only on a
// content-changing edit, together with exactly one appended note.
type Audit struct {
	DatePublished time.Time  `json:"date_published" db:"date_published"`
	DateModified  time.Time  `json:"date_modified" db:"date_modified"`
	EditNotes     []EditNote `json:"edit_notes" db:"edit_notes"`
}

// SequencedPost is one language-specific revision of a logical article.
// Shared field groups are composed as embedded structs rather than a class
// hierarchy; type-specific fields live in the Content map (JSONB).
type SequencedPost struct {
	ID string `json:"id" db:"id"`
	Sequenced
	Title   string  `json:"title" db:"title"`
	Content JSONMap `json:"content" db:"content"`
	Viewable
	Audit
}

// ProtectedPostFields are the field names an edit payload can never set.
// Identity, natural key, view bookkeeping and the audit trail are owned by
// the lifecycle controller, not by callers.
var ProtectedPostFields = []string{
	"id",
	"sequence_id",
	"language",
	"view_count",
	"date_published",
	"date_modified",
	"edit_notes",
}

// StripProtectedFields returns a copy of fields with every protected post
// field removed. A nil input yields an empty map.
func StripProtectedFields(fields JSONMap) JSONMap {
	out := make(JSONMap, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	for _, f := range ProtectedPostFields {
		delete(out, f)
	}
	return out
}

// EditOutcome is the result of an edit operation.
type EditOutcome string

const (
	// EditUpdated means content changed: the modification timestamp advanced
	// and exactly one edit note was appended.
	EditUpdated EditOutcome = "updated"

	// EditNoChange means the filter matched but no field changed value.
	// No timestamp bump, no note - saving with no changes is idempotent.
	EditNoChange EditOutcome = "no_change"

	// EditNotFound means no document matched, or the natural key was missing
	// from the request entirely.
	EditNotFound EditOutcome = "not_found"
)

// GetResult is the outcome of resolving a post for display or editing.
type GetResult struct {
	Post *SequencedPost `json:"post"`

	// IsAltLanguage is true when the requested language was absent and a
	// revision in another language was substituted.
	IsAltLanguage bool `json:"is_alt_language"`

	// OtherLanguages lists the languages (besides the requested one) in which
	// this sequence id exists. Only gathered for display reads.
	OtherLanguages []string `json:"other_languages"`
}

// ListResult is one page of post summaries plus the unpaginated total.
type ListResult struct {
	Entries    []JSONMap `json:"entries"`
	TotalCount int64     `json:"total_count"`
}

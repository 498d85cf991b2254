package models

import (
	"time"

	"github.com/google/uuid"
)

// KeyPointKind classifies a tier-list key point.
type KeyPointKind string

const (
	KeyPointStrength    KeyPointKind = "strength"
	KeyPointWeakness    KeyPointKind = "weakness"
	KeyPointSituational KeyPointKind = "situational"
)

// Valid reports whether k is a known key point kind.
func (k KeyPointKind) Valid() bool {
	switch k {
	case KeyPointStrength, KeyPointWeakness, KeyPointSituational:
		return true
	}
	return false
}

// KeyPoint is a small non-sequenced multi-language document: one reusable
// tier-list remark with a description per language. Within one language,
// description text is unique across entries (enforced by the sync update,
// not by the store).
type KeyPoint struct {
	ID           uuid.UUID         `json:"id" db:"id"`
	Kind         KeyPointKind      `json:"kind" db:"kind"`
	Descriptions map[string]string `json:"descriptions" db:"descriptions"` // keyed by language code
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" db:"updated_at"`
}

// KeyPointInput is one incoming entry of a wholesale sync update. A zero ID
// means a new entry; a non-zero ID references an existing one, whose slot for
// the update's language is replaced.
type KeyPointInput struct {
	ID          uuid.UUID    `json:"id"`
	Kind        KeyPointKind `json:"kind"`
	Description string       `json:"description"`
}

// UnitNameRef maps display names to a unit identifier, one name per language.
// The (name, language) pair is unique across entries.
type UnitNameRef struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	UnitID    string            `json:"unit_id" db:"unit_id"`
	Names     map[string]string `json:"names" db:"names"` // keyed by language code
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}

// UnitNameInput is one incoming entry of a wholesale unit-name sync update.
type UnitNameInput struct {
	ID     uuid.UUID `json:"id"`
	UnitID string    `json:"unit_id"`
	Name   string    `json:"name"`
}

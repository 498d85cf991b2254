package repositories

import (
	"context"

	"github.com/google/uuid"

	"halidom/internal/domain/models"
)

// KeyPointRepository is the store access for tier-list key points.
// Mutating methods participate in a context-carried transaction when one is
// present (see TransactionManager).
type KeyPointRepository interface {
	// GetAll returns every key point entry.
	GetAll(ctx context.Context) ([]models.KeyPoint, error)

	// Insert creates a new entry.
	Insert(ctx context.Context, kp *models.KeyPoint) error

	// UpdateLanguageSlot replaces the kind and the description for one
	// language, leaving other languages' text untouched. Returns
	// domain.ErrNotFound (wrapped) when the id does not exist.
	UpdateLanguageSlot(ctx context.Context, id uuid.UUID, kind models.KeyPointKind, language, description string) error

	// DeleteExcept removes every entry whose id is not in keep. An empty
	// keep set removes all entries. Returns the number deleted.
	DeleteExcept(ctx context.Context, keep []uuid.UUID) (int64, error)
}

// UnitNameRepository is the store access for unit-name reference entries.
type UnitNameRepository interface {
	// GetAll returns every unit-name entry.
	GetAll(ctx context.Context) ([]models.UnitNameRef, error)

	// Insert creates a new entry.
	Insert(ctx context.Context, ref *models.UnitNameRef) error

	// UpdateLanguageSlot replaces the unit id and the display name for one
	// language, leaving other languages' names untouched.
	UpdateLanguageSlot(ctx context.Context, id uuid.UUID, unitID, language, name string) error

	// DeleteExcept removes every entry whose id is not in keep. Returns the
	// number deleted.
	DeleteExcept(ctx context.Context, keep []uuid.UUID) (int64, error)
}

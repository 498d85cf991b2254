package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"halidom/internal/config"
	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// UnitNameService manages the unit-name reference set.
type UnitNameService struct {
	unitNames repositories.UnitNameRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewUnitNameService creates a new unit name service
func NewUnitNameService(unitNames repositories.UnitNameRepository, txManager repositories.TransactionManager, logger *slog.Logger) *UnitNameService {
	return &UnitNameService{
		unitNames: unitNames,
		txManager: txManager,
		logger:    logger,
	}
}

// GetAll returns every unit-name entry.
func (s *UnitNameService) GetAll(ctx context.Context) ([]models.UnitNameRef, error) {
	return s.unitNames.GetAll(ctx)
}

// Update replaces the unit-name set for one language with full replacement
// semantics. Duplicate display names within the batch are rejected before
// any write; all writes share one transaction.
func (s *UnitNameService) Update(ctx context.Context, language string, incoming []models.UnitNameInput) error {
	if !models.IsSupportedLanguage(language) {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, language)
	}

	seen := make(map[string]struct{}, len(incoming))
	for _, in := range incoming {
		if in.UnitID == "" {
			return fmt.Errorf("%w: unit id is required", domain.ErrValidation)
		}
		if in.Name == "" {
			return fmt.Errorf("%w: unit name is required", domain.ErrValidation)
		}
		if len(in.Name) > config.MaxDescriptionLength {
			return fmt.Errorf("%w: unit name longer than %d characters", domain.ErrValidation, config.MaxDescriptionLength)
		}
		if _, dup := seen[in.Name]; dup {
			return &domain.DuplicateContentError{Language: language, Value: in.Name}
		}
		seen[in.Name] = struct{}{}
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		keep := make([]uuid.UUID, 0, len(incoming))

		for _, in := range incoming {
			if in.ID != uuid.Nil {
				if err := s.unitNames.UpdateLanguageSlot(txCtx, in.ID, in.UnitID, language, in.Name); err != nil {
					return err
				}
				keep = append(keep, in.ID)
				continue
			}

			ref := &models.UnitNameRef{
				ID:        uuid.New(),
				UnitID:    in.UnitID,
				Names:     map[string]string{language: in.Name},
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.unitNames.Insert(txCtx, ref); err != nil {
				return err
			}
			keep = append(keep, ref.ID)
		}

		deleted, err := s.unitNames.DeleteExcept(txCtx, keep)
		if err != nil {
			return err
		}

		s.logger.Info("unit names synced",
			"language", language,
			"kept", len(keep),
			"deleted", deleted,
		)
		return nil
	})
}

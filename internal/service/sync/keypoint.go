// Package sync implements the wholesale-replacement update pattern shared by
// the "manage" endpoints: entries present in the incoming set are upserted,
// entries absent are deleted, and a rejected batch leaves the store exactly
// as it was.
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

// KeyPointService manages tier-list key points.
type KeyPointService struct {
	keyPoints repositories.KeyPointRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewKeyPointService creates a new key point service
func NewKeyPointService(keyPoints repositories.KeyPointRepository, txManager repositories.TransactionManager, logger *slog.Logger) *KeyPointService {
	return &KeyPointService{
		keyPoints: keyPoints,
		txManager: txManager,
		logger:    logger,
	}
}

// GetAll returns every key point entry.
func (s *KeyPointService) GetAll(ctx context.Context) ([]models.KeyPoint, error) {
	return s.keyPoints.GetAll(ctx)
}

// Update replaces the key point set for one language. In-batch duplicate
// descriptions are rejected before any write; the writes themselves run in
// one transaction, so a failure leaves the prior entry set untouched.
func (s *KeyPointService) Update(ctx context.Context, language string, incoming []models.KeyPointInput) error {
	if !models.IsSupportedLanguage(language) {
		return fmt.Errorf("%w: unsupported language %q", domain.ErrValidation, language)
	}

	seen := make(map[string]struct{}, len(incoming))
	for _, in := range incoming {
		if !in.Kind.Valid() {
			return fmt.Errorf("%w: unknown key point kind %q", domain.ErrValidation, in.Kind)
		}
		if in.Description == "" {
			return fmt.Errorf("%w: key point description is required", domain.ErrValidation)
		}
		if len(in.Description) > config.MaxDescriptionLength {
			return fmt.Errorf("%w: key point description longer than %d characters", domain.ErrValidation, config.MaxDescriptionLength)
		}
		if _, dup := seen[in.Description]; dup {
			return &domain.DuplicateContentError{Language: language, Value: in.Description}
		}
		seen[in.Description] = struct{}{}
	}

	return s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		keep := make([]uuid.UUID, 0, len(incoming))

		for _, in := range incoming {
			if in.ID != uuid.Nil {
				if err := s.keyPoints.UpdateLanguageSlot(txCtx, in.ID, in.Kind, language, in.Description); err != nil {
					return err
				}
				keep = append(keep, in.ID)
				continue
			}

			kp := &models.KeyPoint{
				ID:           uuid.New(),
				Kind:         in.Kind,
				Descriptions: map[string]string{language: in.Description},
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := s.keyPoints.Insert(txCtx, kp); err != nil {
				return err
			}
			keep = append(keep, kp.ID)
		}

		deleted, err := s.keyPoints.DeleteExcept(txCtx, keep)
		if err != nil {
			return err
		}

		s.logger.Info("key points synced",
			"language", language,
			"kept", len(keep),
			"deleted", deleted,
		)
		return nil
	})
}

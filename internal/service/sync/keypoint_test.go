package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeKeyPointRepo struct {
	entries map[uuid.UUID]*models.KeyPoint
}

func newFakeKeyPointRepo() *fakeKeyPointRepo {
	return &fakeKeyPointRepo{entries: make(map[uuid.UUID]*models.KeyPoint)}
}

func (f *fakeKeyPointRepo) snapshot() map[uuid.UUID]models.KeyPoint {
	s := make(map[uuid.UUID]models.KeyPoint, len(f.entries))
	for id, kp := range f.entries {
		c := *kp
		c.Descriptions = make(map[string]string, len(kp.Descriptions))
		for k, v := range kp.Descriptions {
			c.Descriptions[k] = v
		}
		s[id] = c
	}
	return s
}

func (f *fakeKeyPointRepo) restore(s map[uuid.UUID]models.KeyPoint) {
	f.entries = make(map[uuid.UUID]*models.KeyPoint, len(s))
	for id, kp := range s {
		c := kp
		f.entries[id] = &c
	}
}

func (f *fakeKeyPointRepo) GetAll(_ context.Context) ([]models.KeyPoint, error) {
	out := make([]models.KeyPoint, 0, len(f.entries))
	for _, kp := range f.entries {
		out = append(out, *kp)
	}
	return out, nil
}

func (f *fakeKeyPointRepo) Insert(_ context.Context, kp *models.KeyPoint) error {
	c := *kp
	f.entries[kp.ID] = &c
	return nil
}

func (f *fakeKeyPointRepo) UpdateLanguageSlot(_ context.Context, id uuid.UUID, kind models.KeyPointKind, language, description string) error {
	kp, ok := f.entries[id]
	if !ok {
		return fmt.Errorf("key point %s: %w", id, domain.ErrNotFound)
	}
	kp.Kind = kind
	kp.Descriptions[language] = description
	kp.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeKeyPointRepo) DeleteExcept(_ context.Context, keep []uuid.UUID) (int64, error) {
	keepSet := make(map[uuid.UUID]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}
	var deleted int64
	for id := range f.entries {
		if _, ok := keepSet[id]; !ok {
			delete(f.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeTxManager mimics rollback semantics: it snapshots the repo before the
// function runs and restores it when the function fails.
type fakeTxManager struct {
	repo *fakeKeyPointRepo
}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	before := m.repo.snapshot()
	if err := fn(ctx); err != nil {
		m.repo.restore(before)
		return err
	}
	return nil
}

func testKeyPointService() (*KeyPointService, *fakeKeyPointRepo) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newFakeKeyPointRepo()
	return NewKeyPointService(repo, &fakeTxManager{repo: repo}, logger), repo
}

func seedKeyPoint(repo *fakeKeyPointRepo, kind models.KeyPointKind, descriptions map[string]string) uuid.UUID {
	id := uuid.New()
	repo.entries[id] = &models.KeyPoint{
		ID:           id,
		Kind:         kind,
		Descriptions: descriptions,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	return id
}

// ============================================================================
// Update
// ============================================================================

func TestKeyPointUpdate_WholesaleReplacement(t *testing.T) {
	svc, repo := testKeyPointService()

	kept := seedKeyPoint(repo, models.KeyPointStrength, map[string]string{
		models.LanguageEN: "old text",
		models.LanguageJA: "古いテキスト",
	})
	seedKeyPoint(repo, models.KeyPointWeakness, map[string]string{
		models.LanguageEN: "to be removed",
	})

	err := svc.Update(context.Background(), models.LanguageEN, []models.KeyPointInput{
		{ID: kept, Kind: models.KeyPointStrength, Description: "new text"},
		{Kind: models.KeyPointSituational, Description: "brand new"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(repo.entries) != 2 {
		t.Fatalf("expected 2 entries after sync, got %d", len(repo.entries))
	}

	updated := repo.entries[kept]
	if updated == nil {
		t.Fatal("kept entry was deleted")
	}
	if updated.Descriptions[models.LanguageEN] != "new text" {
		t.Errorf("en slot not updated: %q", updated.Descriptions[models.LanguageEN])
	}
	// Other languages' text survives a single-language sync.
	if updated.Descriptions[models.LanguageJA] != "古いテキスト" {
		t.Errorf("ja slot clobbered: %q", updated.Descriptions[models.LanguageJA])
	}

	var found bool
	for _, kp := range repo.entries {
		if kp.Descriptions[models.LanguageEN] == "brand new" {
			found = true
			if kp.Kind != models.KeyPointSituational {
				t.Errorf("new entry has wrong kind: %s", kp.Kind)
			}
		}
		if kp.Descriptions[models.LanguageEN] == "to be removed" {
			t.Error("absent entry survived the sync")
		}
	}
	if !found {
		t.Error("new entry was not inserted")
	}
}

func TestKeyPointUpdate_EmptySetDeletesAll(t *testing.T) {
	svc, repo := testKeyPointService()
	seedKeyPoint(repo, models.KeyPointStrength, map[string]string{models.LanguageEN: "a"})
	seedKeyPoint(repo, models.KeyPointWeakness, map[string]string{models.LanguageEN: "b"})

	if err := svc.Update(context.Background(), models.LanguageEN, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Errorf("expected all entries deleted, %d remain", len(repo.entries))
	}
}

func TestKeyPointUpdate_DuplicateDescriptionRejectedBeforeWrites(t *testing.T) {
	svc, repo := testKeyPointService()
	existing := seedKeyPoint(repo, models.KeyPointStrength, map[string]string{models.LanguageEN: "original"})

	err := svc.Update(context.Background(), models.LanguageEN, []models.KeyPointInput{
		{ID: existing, Kind: models.KeyPointStrength, Description: "same text"},
		{Kind: models.KeyPointWeakness, Description: "same text"},
	})
	if !errors.Is(err, domain.ErrDuplicateContent) {
		t.Fatalf("expected duplicate content error, got %v", err)
	}

	// The rejected batch must leave the prior set untouched.
	if len(repo.entries) != 1 {
		t.Fatalf("rejected batch mutated the store: %d entries", len(repo.entries))
	}
	if repo.entries[existing].Descriptions[models.LanguageEN] != "original" {
		t.Error("rejected batch overwrote an existing entry")
	}
}

func TestKeyPointUpdate_MidBatchFailureRollsBack(t *testing.T) {
	svc, repo := testKeyPointService()
	existing := seedKeyPoint(repo, models.KeyPointStrength, map[string]string{models.LanguageEN: "original"})

	// Reference a missing id after a valid new entry so the failure happens
	// mid-transaction.
	err := svc.Update(context.Background(), models.LanguageEN, []models.KeyPointInput{
		{Kind: models.KeyPointWeakness, Description: "inserted then rolled back"},
		{ID: uuid.New(), Kind: models.KeyPointStrength, Description: "missing id"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("transaction did not roll back: %d entries", len(repo.entries))
	}
	if repo.entries[existing].Descriptions[models.LanguageEN] != "original" {
		t.Error("rollback lost the original entry")
	}
}

func TestKeyPointUpdate_Validation(t *testing.T) {
	svc, _ := testKeyPointService()

	tests := []struct {
		name     string
		language string
		inputs   []models.KeyPointInput
	}{
		{
			"unsupported language",
			"fr",
			[]models.KeyPointInput{{Kind: models.KeyPointStrength, Description: "x"}},
		},
		{
			"unknown kind",
			models.LanguageEN,
			[]models.KeyPointInput{{Kind: "mystery", Description: "x"}},
		},
		{
			"empty description",
			models.LanguageEN,
			[]models.KeyPointInput{{Kind: models.KeyPointStrength}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Update(context.Background(), tt.language, tt.inputs)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

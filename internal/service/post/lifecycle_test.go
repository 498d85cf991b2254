package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"testing"
	"time"

	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeAllocator struct {
	counters map[string]int64
}

func newFakeAllocator() *fakeAllocator {
	return &fakeAllocator{counters: make(map[string]int64)}
}

func (f *fakeAllocator) NextSequenceID(_ context.Context, collection string, consume bool) (int64, error) {
	if consume {
		f.counters[collection]++
	}
	return f.counters[collection], nil
}

type pairKey struct {
	sequenceID int64
	language   string
}

type fakePostRepo struct {
	// collection -> pair -> revision
	data map[string]map[pairKey]*models.SequencedPost
	next int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{data: make(map[string]map[pairKey]*models.SequencedPost)}
}

func (f *fakePostRepo) table(collection string) map[pairKey]*models.SequencedPost {
	t, ok := f.data[collection]
	if !ok {
		t = make(map[pairKey]*models.SequencedPost)
		f.data[collection] = t
	}
	return t
}

func copyPost(p *models.SequencedPost) *models.SequencedPost {
	c := *p
	c.Content = make(models.JSONMap, len(p.Content))
	for k, v := range p.Content {
		c.Content[k] = v
	}
	c.EditNotes = append([]models.EditNote{}, p.EditNotes...)
	return &c
}

func (f *fakePostRepo) Insert(_ context.Context, collection string, post *models.SequencedPost) error {
	t := f.table(collection)
	key := pairKey{post.SequenceID, post.Language}
	if _, exists := t[key]; exists {
		return &domain.ConflictError{
			Message:      "revision already exists",
			ResourceType: collection,
			SequenceID:   post.SequenceID,
			Language:     post.Language,
		}
	}
	if post.ID == "" {
		f.next++
		post.ID = fmt.Sprintf("fake-%d", f.next)
	}
	t[key] = copyPost(post)
	return nil
}

func (f *fakePostRepo) FindAndCountView(_ context.Context, collection string, sequenceID int64, language string, inc int64) (*models.SequencedPost, error) {
	p, ok := f.table(collection)[pairKey{sequenceID, language}]
	if !ok {
		return nil, nil
	}
	p.ViewCount += inc
	return copyPost(p), nil
}

func (f *fakePostRepo) FindAnyLanguageAndCountView(_ context.Context, collection string, sequenceID int64, inc int64) (*models.SequencedPost, error) {
	var keys []pairKey
	for k := range f.table(collection) {
		if k.sequenceID == sequenceID {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].language < keys[j].language })
	p := f.table(collection)[keys[0]]
	p.ViewCount += inc
	return copyPost(p), nil
}

func (f *fakePostRepo) Languages(_ context.Context, collection string, sequenceID int64, exclude string) ([]string, error) {
	langs := []string{}
	for k := range f.table(collection) {
		if k.sequenceID == sequenceID && k.language != exclude {
			langs = append(langs, k.language)
		}
	}
	sort.Strings(langs)
	return langs, nil
}

func (f *fakePostRepo) Exists(_ context.Context, collection string, sequenceID int64, language string) (bool, error) {
	_, ok := f.table(collection)[pairKey{sequenceID, language}]
	return ok, nil
}

func (f *fakePostRepo) UpdateContent(_ context.Context, collection string, sequenceID int64, language string, update *repositories.ContentUpdate) (bool, bool, error) {
	p, ok := f.table(collection)[pairKey{sequenceID, language}]
	if !ok {
		return false, false, nil
	}
	for k, v := range update.Extra {
		if !reflect.DeepEqual(p.Content[k], v) {
			return false, false, nil
		}
	}

	changed := false
	if update.Title != nil && *update.Title != p.Title {
		p.Title = *update.Title
		changed = true
	}
	for k, v := range update.Fields {
		if !reflect.DeepEqual(p.Content[k], v) {
			p.Content[k] = v
			changed = true
		}
	}
	return true, changed, nil
}

func (f *fakePostRepo) AppendEditNote(_ context.Context, collection string, sequenceID int64, language string, note models.EditNote) error {
	p, ok := f.table(collection)[pairKey{sequenceID, language}]
	if !ok {
		return domain.ErrNotFound
	}
	p.DateModified = note.Timestamp
	p.EditNotes = append(p.EditNotes, note)
	return nil
}

func (f *fakePostRepo) List(_ context.Context, collection string, language string, start, limit int) ([]models.SequencedPost, error) {
	var posts []*models.SequencedPost
	for k, p := range f.table(collection) {
		if k.language == language {
			posts = append(posts, p)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].DateModified.After(posts[j].DateModified) })

	if start >= len(posts) {
		return nil, nil
	}
	end := start + limit
	if end > len(posts) {
		end = len(posts)
	}
	out := make([]models.SequencedPost, 0, end-start)
	for _, p := range posts[start:end] {
		out = append(out, *copyPost(p))
	}
	return out, nil
}

func (f *fakePostRepo) Count(_ context.Context, collection string, language string) (int64, error) {
	var n int64
	for k := range f.table(collection) {
		if k.language == language {
			n++
		}
	}
	return n, nil
}

func testLifecycle() (*Lifecycle, *fakeAllocator, *fakePostRepo) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	alloc := newFakeAllocator()
	repo := newFakePostRepo()
	return NewLifecycle("analyses", alloc, repo, logger), alloc, repo
}

func mustPublish(t *testing.T, l *Lifecycle, req *PublishRequest) int64 {
	t.Helper()
	id, err := l.Publish(context.Background(), req)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	return id
}

// ============================================================================
// Publish
// ============================================================================

func TestPublish_AssignsSequentialIDs(t *testing.T) {
	l, _, _ := testLifecycle()

	for want := int64(1); want <= 3; want++ {
		got := mustPublish(t, l, &PublishRequest{
			Language: models.LanguageEN,
			Title:    fmt.Sprintf("post %d", want),
		})
		if got != want {
			t.Errorf("expected sequence id %d, got %d", want, got)
		}
	}
}

func TestPublish_RejectsUnsupportedLanguage(t *testing.T) {
	l, _, _ := testLifecycle()

	_, err := l.Publish(context.Background(), &PublishRequest{Language: "fr", Title: "x"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPublish_DesiredIDReusesAcrossLanguages(t *testing.T) {
	l, _, _ := testLifecycle()

	id := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "english"})

	got := mustPublish(t, l, &PublishRequest{
		SequenceID: &id,
		Language:   models.LanguageJA,
		Title:      "japanese",
	})
	if got != id {
		t.Errorf("expected reuse of id %d, got %d", id, got)
	}

	// A third publish without a desired id must not collide with the reuse.
	next := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "second"})
	if next != id+1 {
		t.Errorf("expected next id %d, got %d", id+1, next)
	}
}

func TestPublish_DesiredIDDuplicatePairRejected(t *testing.T) {
	l, _, repo := testLifecycle()

	id := mustPublish(t, l, &PublishRequest{
		Language: models.LanguageEN,
		Title:    "original",
		Content:  models.JSONMap{"summary": "intact"},
	})

	_, err := l.Publish(context.Background(), &PublishRequest{
		SequenceID: &id,
		Language:   models.LanguageEN,
		Title:      "imposter",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	// The stored revision must be untouched by the failed publish.
	stored := repo.table("analyses")[pairKey{id, models.LanguageEN}]
	if stored.Title != "original" || stored.Content["summary"] != "intact" {
		t.Errorf("failed publish mutated the stored revision: %+v", stored)
	}
}

func TestPublish_DesiredIDBeyondNextRejected(t *testing.T) {
	l, alloc, _ := testLifecycle()

	mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "first"})

	desired := int64(5)
	_, err := l.Publish(context.Background(), &PublishRequest{
		SequenceID: &desired,
		Language:   models.LanguageEN,
		Title:      "skipper",
	})
	if !errors.Is(err, domain.ErrSequenceSkip) {
		t.Fatalf("expected sequence skip error, got %v", err)
	}

	var skip *domain.SequenceSkipError
	if !errors.As(err, &skip) {
		t.Fatalf("expected *SequenceSkipError, got %T", err)
	}
	if skip.Desired != 5 || skip.Next != 2 {
		t.Errorf("unexpected skip detail: desired=%d next=%d", skip.Desired, skip.Next)
	}

	// Rejected publish must not have advanced the counter.
	if alloc.counters["analyses"] != 1 {
		t.Errorf("counter advanced on rejected publish: %d", alloc.counters["analyses"])
	}
}

func TestPublish_DesiredIDEqualToNextConsumesCounter(t *testing.T) {
	l, alloc, _ := testLifecycle()

	mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "first"})

	desired := int64(2)
	got := mustPublish(t, l, &PublishRequest{
		SequenceID: &desired,
		Language:   models.LanguageEN,
		Title:      "explicit next",
	})
	if got != 2 {
		t.Fatalf("expected id 2, got %d", got)
	}
	if alloc.counters["analyses"] != 2 {
		t.Errorf("expected counter consumed to 2, got %d", alloc.counters["analyses"])
	}

	// The following auto-assigned publish must mint 3, not reissue 2.
	next := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "third"})
	if next != 3 {
		t.Errorf("expected id 3 after explicit consume, got %d", next)
	}
}

func TestPublish_RejectsNonPositiveDesiredID(t *testing.T) {
	l, _, _ := testLifecycle()

	for _, id := range []int64{0, -3} {
		desired := id
		_, err := l.Publish(context.Background(), &PublishRequest{
			SequenceID: &desired,
			Language:   models.LanguageEN,
			Title:      "x",
		})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("id %d: expected validation error, got %v", id, err)
		}
	}
}

func TestPublish_CountersIndependentPerCollection(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	alloc := newFakeAllocator()
	repo := newFakePostRepo()
	analyses := NewLifecycle("analyses", alloc, repo, logger)
	quests := NewLifecycle("quests", alloc, repo, logger)

	mustPublish(t, analyses, &PublishRequest{Language: models.LanguageEN, Title: "a1"})
	mustPublish(t, analyses, &PublishRequest{Language: models.LanguageEN, Title: "a2"})
	got := mustPublish(t, quests, &PublishRequest{Language: models.LanguageEN, Title: "q1"})
	if got != 1 {
		t.Errorf("expected quest counter to start at 1, got %d", got)
	}
}

// ============================================================================
// Get
// ============================================================================

func TestGet_ExactLanguageIncrementsView(t *testing.T) {
	l, _, _ := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "hello"})

	for i := 1; i <= 2; i++ {
		result, err := l.Get(context.Background(), id, models.LanguageEN, true)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if result == nil || result.Post == nil {
			t.Fatal("expected a post")
		}
		if result.IsAltLanguage {
			t.Error("exact-language hit flagged as alt language")
		}
		if result.Post.ViewCount != int64(i) {
			t.Errorf("read %d: expected view count %d, got %d", i, i, result.Post.ViewCount)
		}
	}
}

func TestGet_ForEditDoesNotIncrementView(t *testing.T) {
	l, _, _ := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "hello"})

	result, err := l.Get(context.Background(), id, models.LanguageEN, false)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result.Post.ViewCount != 0 {
		t.Errorf("editing read bumped view count to %d", result.Post.ViewCount)
	}
	if len(result.OtherLanguages) != 0 {
		t.Errorf("editing read gathered other languages: %v", result.OtherLanguages)
	}
}

func TestGet_AltLanguageFallback(t *testing.T) {
	l, _, _ := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{Language: models.LanguageJA, Title: "日本語"})

	result, err := l.Get(context.Background(), id, models.LanguageEN, true)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected fallback revision")
	}
	if !result.IsAltLanguage {
		t.Error("fallback not flagged as alt language")
	}
	if result.Post.Language != models.LanguageJA {
		t.Errorf("expected ja revision, got %s", result.Post.Language)
	}
	if !reflect.DeepEqual(result.OtherLanguages, []string{models.LanguageJA}) {
		t.Errorf("unexpected other languages: %v", result.OtherLanguages)
	}
	// The view count lands on the revision actually served.
	if result.Post.ViewCount != 1 {
		t.Errorf("expected fallback revision view count 1, got %d", result.Post.ViewCount)
	}
}

func TestGet_MissingIDReturnsNil(t *testing.T) {
	l, _, _ := testLifecycle()

	result, err := l.Get(context.Background(), 42, models.LanguageEN, true)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}

// ============================================================================
// Edit
// ============================================================================

func TestEdit_ChangeAppendsNoteAndBumpsTimestamp(t *testing.T) {
	l, _, repo := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{
		Language: models.LanguageEN,
		Title:    "before",
		Content:  models.JSONMap{"summary": "old"},
	})
	published := repo.table("analyses")[pairKey{id, models.LanguageEN}].DatePublished

	outcome, err := l.Edit(context.Background(), &EditRequest{
		SequenceID: id,
		Language:   models.LanguageEN,
		Fields:     models.JSONMap{"summary": "new"},
		Note:       "reworded summary",
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if outcome != models.EditUpdated {
		t.Fatalf("expected updated, got %s", outcome)
	}

	stored := repo.table("analyses")[pairKey{id, models.LanguageEN}]
	if stored.Content["summary"] != "new" {
		t.Errorf("field not updated: %v", stored.Content["summary"])
	}
	if len(stored.EditNotes) != 1 || stored.EditNotes[0].Note != "reworded summary" {
		t.Errorf("unexpected edit notes: %+v", stored.EditNotes)
	}
	if !stored.DateModified.After(published) {
		t.Error("modification timestamp did not advance")
	}
	if !stored.DatePublished.Equal(published) {
		t.Error("publish timestamp changed on edit")
	}
}

func TestEdit_NoChangeIsIdempotent(t *testing.T) {
	l, _, repo := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{
		Language: models.LanguageEN,
		Title:    "same",
		Content:  models.JSONMap{"summary": "same"},
	})
	before := *repo.table("analyses")[pairKey{id, models.LanguageEN}]

	outcome, err := l.Edit(context.Background(), &EditRequest{
		SequenceID: id,
		Language:   models.LanguageEN,
		Fields:     models.JSONMap{"summary": "same"},
		Note:       "should not be recorded",
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if outcome != models.EditNoChange {
		t.Fatalf("expected no_change, got %s", outcome)
	}

	after := repo.table("analyses")[pairKey{id, models.LanguageEN}]
	if len(after.EditNotes) != 0 {
		t.Errorf("no-op edit appended a note: %+v", after.EditNotes)
	}
	if !after.DateModified.Equal(before.DateModified) {
		t.Error("no-op edit bumped the modification timestamp")
	}
}

func TestEdit_MissingRevisionNotFound(t *testing.T) {
	l, _, _ := testLifecycle()

	outcome, err := l.Edit(context.Background(), &EditRequest{
		SequenceID: 9,
		Language:   models.LanguageEN,
		Fields:     models.JSONMap{"summary": "x"},
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if outcome != models.EditNotFound {
		t.Fatalf("expected not_found, got %s", outcome)
	}
}

func TestEdit_MissingKeyShortCircuits(t *testing.T) {
	l, _, _ := testLifecycle()

	for _, req := range []*EditRequest{
		{Language: models.LanguageEN, Fields: models.JSONMap{"a": 1}},
		{SequenceID: 1, Fields: models.JSONMap{"a": 1}},
	} {
		outcome, err := l.Edit(context.Background(), req)
		if err != nil {
			t.Fatalf("Edit failed: %v", err)
		}
		if outcome != models.EditNotFound {
			t.Errorf("expected not_found for incomplete key, got %s", outcome)
		}
	}
}

func TestEdit_ProtectedFieldsStripped(t *testing.T) {
	l, _, repo := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{
		Language: models.LanguageEN,
		Title:    "post",
		Content:  models.JSONMap{"summary": "x"},
	})

	outcome, err := l.Edit(context.Background(), &EditRequest{
		SequenceID: id,
		Language:   models.LanguageEN,
		Fields: models.JSONMap{
			"view_count":  int64(9999),
			"sequence_id": int64(77),
			"summary":     "y",
		},
		Note: "attempted takeover",
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if outcome != models.EditUpdated {
		t.Fatalf("expected updated, got %s", outcome)
	}

	stored := repo.table("analyses")[pairKey{id, models.LanguageEN}]
	if stored.ViewCount != 0 {
		t.Errorf("protected view_count overwritten: %d", stored.ViewCount)
	}
	if stored.SequenceID != id {
		t.Errorf("protected sequence_id overwritten: %d", stored.SequenceID)
	}
	if _, leaked := stored.Content["view_count"]; leaked {
		t.Error("protected field leaked into content map")
	}
	if stored.Content["summary"] != "y" {
		t.Error("legitimate field was not applied")
	}
}

func TestEdit_ExtraFilterMismatchNotFound(t *testing.T) {
	l, _, _ := testLifecycle()
	id := mustPublish(t, l, &PublishRequest{
		Language: models.LanguageEN,
		Title:    "post",
		Content:  models.JSONMap{"unit_type": "character"},
	})

	outcome, err := l.Edit(context.Background(), &EditRequest{
		SequenceID: id,
		Language:   models.LanguageEN,
		Extra:      models.JSONMap{"unit_type": "dragon"},
		Fields:     models.JSONMap{"summary": "x"},
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if outcome != models.EditNotFound {
		t.Fatalf("expected not_found on filter mismatch, got %s", outcome)
	}
}

// ============================================================================
// List
// ============================================================================

func TestList_OrdersByModifiedDescWithTotal(t *testing.T) {
	l, _, repo := testLifecycle()

	base := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		id := mustPublish(t, l, &PublishRequest{
			Language: models.LanguageEN,
			Title:    fmt.Sprintf("post %d", i),
		})
		// Space out modification times so the order is deterministic.
		repo.table("analyses")[pairKey{id, models.LanguageEN}].DateModified = base.Add(time.Duration(i) * time.Minute)
	}
	mustPublish(t, l, &PublishRequest{Language: models.LanguageJA, Title: "other language"})

	titleAt := func(entries []models.JSONMap, i int) string {
		s, _ := entries[i]["title"].(string)
		return s
	}

	result, err := l.List(context.Background(), models.LanguageEN, 0, 2, func(p *models.SequencedPost) models.JSONMap {
		return models.JSONMap{"title": p.Title}
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if result.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", result.TotalCount)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if titleAt(result.Entries, 0) != "post 5" || titleAt(result.Entries, 1) != "post 4" {
		t.Errorf("unexpected page order: %v, %v", result.Entries[0], result.Entries[1])
	}

	// Second page continues where the first left off.
	result, err = l.List(context.Background(), models.LanguageEN, 2, 2, func(p *models.SequencedPost) models.JSONMap {
		return models.JSONMap{"title": p.Title}
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if titleAt(result.Entries, 0) != "post 3" || titleAt(result.Entries, 1) != "post 2" {
		t.Errorf("unexpected second page: %v, %v", result.Entries[0], result.Entries[1])
	}
}

func TestList_DefaultsAndCaps(t *testing.T) {
	l, _, _ := testLifecycle()
	mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "only"})

	// Negative start and zero limit fall back to defaults rather than erroring.
	result, err := l.List(context.Background(), models.LanguageEN, -10, 0, func(p *models.SequencedPost) models.JSONMap {
		return models.JSONMap{"title": p.Title}
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(result.Entries) != 1 || result.TotalCount != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

// ============================================================================
// Availability
// ============================================================================

func TestIsIDAvailable(t *testing.T) {
	l, _, _ := testLifecycle()
	used := mustPublish(t, l, &PublishRequest{Language: models.LanguageEN, Title: "taken"})

	ptr := func(v int64) *int64 { return &v }

	tests := []struct {
		name     string
		language string
		id       *int64
		want     bool
	}{
		{"nil id is always available", models.LanguageEN, nil, true},
		{"zero id never available", models.LanguageEN, ptr(0), false},
		{"negative id never available", models.LanguageEN, ptr(-1), false},
		{"used pair unavailable", models.LanguageEN, ptr(used), false},
		{"used id free in another language", models.LanguageJA, ptr(used), true},
		{"next id available", models.LanguageEN, ptr(used + 1), true},
		{"beyond next unavailable", models.LanguageEN, ptr(used + 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.IsIDAvailable(context.Background(), tt.language, tt.id)
			if err != nil {
				t.Fatalf("IsIDAvailable failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"halidom/internal/domain"
	"halidom/internal/domain/models"
	"halidom/internal/domain/repositories"
)

const postColumns = "id, sequence_id, language, title, content, view_count, date_published, date_modified, edit_notes"

// PostgresPostRepository implements the PostRepository interface. One
// instance serves every sequenced-post collection; the logical collection
// name is resolved to a physical table per call.
type PostgresPostRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPostRepository creates a new post repository
func NewPostRepository(config *RepositoryConfig) repositories.PostRepository {
	return &PostgresPostRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Insert creates a new revision. The unique index on (sequence_id, language)
// rejects an already-used pair; the insert is atomic, so a rejected insert
// leaves the stored revision byte-for-byte untouched.
func (r *PostgresPostRepository) Insert(ctx context.Context, collection string, post *models.SequencedPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.EditNotes == nil {
		post.EditNotes = []models.EditNote{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, sequence_id, language, title, content, view_count, date_published, date_modified, edit_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Post(collection))

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		post.ID,
		post.SequenceID,
		post.Language,
		post.Title,
		post.Content,
		post.ViewCount,
		post.DatePublished,
		post.DateModified,
		post.EditNotes,
	)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%s %d already published in %s", collection, post.SequenceID, post.Language),
				ResourceType: collection,
				SequenceID:   post.SequenceID,
				Language:     post.Language,
			}
		}
		return fmt.Errorf("insert %s: %w", collection, err)
	}

	return nil
}

// FindAndCountView resolves the exact (sequenceID, language) revision and
// adds inc to its view count in one atomic statement, so concurrent readers
// never lose increments and each observes a self-consistent document.
func (r *PostgresPostRepository) FindAndCountView(ctx context.Context, collection string, sequenceID int64, language string, inc int64) (*models.SequencedPost, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET view_count = view_count + $3
		WHERE sequence_id = $1 AND language = $2
		RETURNING %s
	`, r.tables.Post(collection), postColumns)

	executor := GetExecutor(ctx, r.pool)
	post, err := scanPost(executor.QueryRow(ctx, query, sequenceID, language, inc))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %d/%s: %w", collection, sequenceID, language, err)
	}

	return post, nil
}

// FindAnyLanguageAndCountView is the alt-language fallback: the same atomic
// find-and-increment filtered by sequence id alone. The view count of the
// revision actually returned is the one incremented.
func (r *PostgresPostRepository) FindAnyLanguageAndCountView(ctx context.Context, collection string, sequenceID int64, inc int64) (*models.SequencedPost, error) {
	table := r.tables.Post(collection)
	query := fmt.Sprintf(`
		UPDATE %s SET view_count = view_count + $2
		WHERE id = (SELECT id FROM %s WHERE sequence_id = $1 ORDER BY language LIMIT 1)
		RETURNING %s
	`, table, table, postColumns)

	executor := GetExecutor(ctx, r.pool)
	post, err := scanPost(executor.QueryRow(ctx, query, sequenceID, inc))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find %s %d (any language): %w", collection, sequenceID, err)
	}

	return post, nil
}

// Languages lists the languages in which sequenceID exists, excluding the
// given one.
func (r *PostgresPostRepository) Languages(ctx context.Context, collection string, sequenceID int64, exclude string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT language FROM %s
		WHERE sequence_id = $1 AND language <> $2
		ORDER BY language ASC
	`, r.tables.Post(collection))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, sequenceID, exclude)
	if err != nil {
		return nil, fmt.Errorf("list languages for %s %d: %w", collection, sequenceID, err)
	}
	defer rows.Close()

	languages := []string{}
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		languages = append(languages, lang)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate languages: %w", err)
	}

	return languages, nil
}

// Exists reports whether a revision exists for the exact pair.
func (r *PostgresPostRepository) Exists(ctx context.Context, collection string, sequenceID int64, language string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE sequence_id = $1 AND language = $2)
	`, r.tables.Post(collection))

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, sequenceID, language).Scan(&exists); err != nil {
		return false, fmt.Errorf("check %s %d/%s: %w", collection, sequenceID, language, err)
	}

	return exists, nil
}

// UpdateContent applies the phase-1 content update against the natural-key
// filter. The statement joins against a locked snapshot of the prior row so
// it can report whether any field actually changed value, which decides
// whether phase 2 (timestamp bump + note) runs at all.
func (r *PostgresPostRepository) UpdateContent(ctx context.Context, collection string, sequenceID int64, language string, update *repositories.ContentUpdate) (bool, bool, error) {
	table := r.tables.Post(collection)

	fields := update.Fields
	if fields == nil {
		// jsonb concat with NULL would null the whole content column
		fields = models.JSONMap{}
	}

	filter := `sequence_id = $1 AND language = $2`
	args := []interface{}{sequenceID, language, update.Title, fields}
	if len(update.Extra) > 0 {
		filter += ` AND content @> $5::jsonb`
		args = append(args, update.Extra)
	}

	query := fmt.Sprintf(`
		UPDATE %s AS p
		SET title = COALESCE($3, prev.title),
		    content = prev.content || $4::jsonb
		FROM (SELECT id, title, content FROM %s WHERE %s FOR UPDATE) AS prev
		WHERE p.id = prev.id
		RETURNING (p.title IS DISTINCT FROM prev.title OR p.content IS DISTINCT FROM prev.content)
	`, table, table, filter)

	var changed bool
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, args...).Scan(&changed)
	if err != nil {
		if IsPgNoRowsError(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("update %s %d/%s: %w", collection, sequenceID, language, err)
	}

	return true, changed, nil
}

// AppendEditNote is the phase-2 audit update: advances the modification
// timestamp and appends exactly one note to the edit history.
func (r *PostgresPostRepository) AppendEditNote(ctx context.Context, collection string, sequenceID int64, language string, note models.EditNote) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET date_modified = $3, edit_notes = edit_notes || $4::jsonb
		WHERE sequence_id = $1 AND language = $2
	`, r.tables.Post(collection))

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, sequenceID, language, note.Timestamp, note)
	if err != nil {
		return fmt.Errorf("append edit note to %s %d/%s: %w", collection, sequenceID, language, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%s %d/%s: %w", collection, sequenceID, language, domain.ErrNotFound)
	}

	return nil
}

// List returns one page of revisions in the given language, most recently
// modified first.
func (r *PostgresPostRepository) List(ctx context.Context, collection string, language string, start, limit int) ([]models.SequencedPost, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE language = $1
		ORDER BY date_modified DESC
		OFFSET $2 LIMIT $3
	`, postColumns, r.tables.Post(collection))

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, language, start, limit)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	posts := []models.SequencedPost{}
	for rows.Next() {
		var post models.SequencedPost
		err := rows.Scan(
			&post.ID,
			&post.SequenceID,
			&post.Language,
			&post.Title,
			&post.Content,
			&post.ViewCount,
			&post.DatePublished,
			&post.DateModified,
			&post.EditNotes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return posts, nil
}

// Count returns the number of revisions matching the language filter alone.
// Computed as a separate query from List; the total may be slightly stale
// relative to the page under concurrent writes, which pagination tolerates.
func (r *PostgresPostRepository) Count(ctx context.Context, collection string, language string) (int64, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE language = $1`, r.tables.Post(collection))

	var total int64
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, language).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}

	return total, nil
}

// rowScanner matches pgx.Row for single-row scans.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*models.SequencedPost, error) {
	var post models.SequencedPost
	err := row.Scan(
		&post.ID,
		&post.SequenceID,
		&post.Language,
		&post.Title,
		&post.Content,
		&post.ViewCount,
		&post.DatePublished,
		&post.DateModified,
		&post.EditNotes,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

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

// PostgresKeyPointRepository implements the KeyPointRepository interface
type PostgresKeyPointRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewKeyPointRepository creates a new key point repository
func NewKeyPointRepository(config *RepositoryConfig) repositories.KeyPointRepository {
	return &PostgresKeyPointRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetAll returns every key point entry.
func (r *PostgresKeyPointRepository) GetAll(ctx context.Context) ([]models.KeyPoint, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, descriptions, created_at, updated_at
		FROM %s
		ORDER BY created_at ASC
	`, r.tables.KeyPoints)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list key points: %w", err)
	}
	defer rows.Close()

	entries := []models.KeyPoint{}
	for rows.Next() {
		var kp models.KeyPoint
		if err := rows.Scan(&kp.ID, &kp.Kind, &kp.Descriptions, &kp.CreatedAt, &kp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan key point: %w", err)
		}
		entries = append(entries, kp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key points: %w", err)
	}

	return entries, nil
}

// Insert creates a new entry.
func (r *PostgresKeyPointRepository) Insert(ctx context.Context, kp *models.KeyPoint) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, descriptions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.KeyPoints)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, kp.ID, kp.Kind, kp.Descriptions, kp.CreatedAt, kp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert key point: %w", err)
	}

	return nil
}

// UpdateLanguageSlot replaces the kind and the one language's description,
// leaving other languages' text untouched.
func (r *PostgresKeyPointRepository) UpdateLanguageSlot(ctx context.Context, id uuid.UUID, kind models.KeyPointKind, language, description string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET kind = $2,
		    descriptions = jsonb_set(descriptions, ARRAY[$3], to_jsonb($4::text)),
		    updated_at = NOW()
		WHERE id = $1
	`, r.tables.KeyPoints)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, kind, language, description)
	if err != nil {
		return fmt.Errorf("update key point %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("key point %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteExcept removes every entry not referenced by keep. An empty keep set
// removes all entries (full replacement semantics).
func (r *PostgresKeyPointRepository) DeleteExcept(ctx context.Context, keep []uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, r.tables.KeyPoints)

	ids := make([]string, len(keep))
	for i, id := range keep {
		ids[i] = id.String()
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete key points: %w", err)
	}

	return result.RowsAffected(), nil
}

// PostgresUnitNameRepository implements the UnitNameRepository interface
type PostgresUnitNameRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewUnitNameRepository creates a new unit name repository
func NewUnitNameRepository(config *RepositoryConfig) repositories.UnitNameRepository {
	return &PostgresUnitNameRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// GetAll returns every unit-name entry.
func (r *PostgresUnitNameRepository) GetAll(ctx context.Context) ([]models.UnitNameRef, error) {
	query := fmt.Sprintf(`
		SELECT id, unit_id, names, created_at, updated_at
		FROM %s
		ORDER BY created_at ASC
	`, r.tables.UnitNames)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unit names: %w", err)
	}
	defer rows.Close()

	entries := []models.UnitNameRef{}
	for rows.Next() {
		var ref models.UnitNameRef
		if err := rows.Scan(&ref.ID, &ref.UnitID, &ref.Names, &ref.CreatedAt, &ref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan unit name: %w", err)
		}
		entries = append(entries, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate unit names: %w", err)
	}

	return entries, nil
}

// Insert creates a new entry.
func (r *PostgresUnitNameRepository) Insert(ctx context.Context, ref *models.UnitNameRef) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, unit_id, names, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.UnitNames)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query, ref.ID, ref.UnitID, ref.Names, ref.CreatedAt, ref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert unit name: %w", err)
	}

	return nil
}

// UpdateLanguageSlot replaces the unit id and the one language's display
// name, leaving other languages' names untouched.
func (r *PostgresUnitNameRepository) UpdateLanguageSlot(ctx context.Context, id uuid.UUID, unitID, language, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET unit_id = $2,
		    names = jsonb_set(names, ARRAY[$3], to_jsonb($4::text)),
		    updated_at = NOW()
		WHERE id = $1
	`, r.tables.UnitNames)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, unitID, language, name)
	if err != nil {
		return fmt.Errorf("update unit name %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("unit name %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteExcept removes every entry not referenced by keep.
func (r *PostgresUnitNameRepository) DeleteExcept(ctx context.Context, keep []uuid.UUID) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE NOT (id = ANY($1))`, r.tables.UnitNames)

	ids := make([]string, len(keep))
	for i, id := range keep {
		ids[i] = id.String()
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, ids)
	if err != nil {
		return 0, fmt.Errorf("delete unit names: %w", err)
	}

	return result.RowsAffected(), nil
}

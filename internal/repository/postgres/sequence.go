package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"halidom/internal/domain/repositories"
)

// PostgresSequenceAllocator implements the SequenceAllocator interface over
// a dedicated counter table: one row per logical collection, created lazily
// on first use.
type PostgresSequenceAllocator struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewSequenceAllocator creates a new sequence allocator
func NewSequenceAllocator(config *RepositoryConfig) repositories.SequenceAllocator {
	return &PostgresSequenceAllocator{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// NextSequenceID atomically bumps the counter by 1 (consume) or 0 (peek) and
// returns its value. The single upsert statement doubles as the idempotent
// bootstrap: a missing row is created at zero before the increment applies,
// and racing callers each observe a distinct value when consuming.
func (a *PostgresSequenceAllocator) NextSequenceID(ctx context.Context, collection string, consume bool) (int64, error) {
	var inc int64
	if consume {
		inc = 1
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (collection_name, counter) VALUES ($1, $2)
		ON CONFLICT (collection_name) DO UPDATE SET counter = %s.counter + $2
		RETURNING counter
	`, a.tables.SequenceCounters, a.tables.SequenceCounters)

	var counter int64
	executor := GetExecutor(ctx, a.pool)
	if err := executor.QueryRow(ctx, query, collection, inc).Scan(&counter); err != nil {
		return 0, fmt.Errorf("next sequence id for %s: %w", collection, err)
	}

	return counter, nil
}

package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"halidom/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names. Sequenced-post tables
// are resolved per logical collection via Post.
type TableNames struct {
	prefix           string
	SequenceCounters string
	KeyPoints        string
	UnitNames        string
	UserSettings     string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		prefix:           prefix,
		SequenceCounters: fmt.Sprintf("%ssequence_counters", prefix),
		KeyPoints:        fmt.Sprintf("%skey_points", prefix),
		UnitNames:        fmt.Sprintf("%sunit_names", prefix),
		UserSettings:     fmt.Sprintf("%suser_settings", prefix),
	}
}

// Post resolves a logical post collection to its physical table name.
func (t *TableNames) Post(collection string) string {
	return t.prefix + collection
}

// CreateConnectionPool creates a new pgx connection pool shared by all
// concurrent requests. Connection-level timeouts are inherited from the
// pgx client; this core adds none of its own.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Configure pool size
	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the appropriate query executor for the context.
// If a transaction is present in the context, it returns the transaction.
// Otherwise, it returns the provided pool.
// This enables repositories to automatically participate in transactions when they exist.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

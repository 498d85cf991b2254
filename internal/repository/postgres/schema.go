package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"halidom/internal/domain/models"
)

// EnsureSchema creates every table and index the repositories rely on,
// idempotently. It runs once at process startup, before any write is
// attempted; in particular every sequenced-post table gets its unique
// compound index on (sequence_id, language) here.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, collection := range models.PostCollections {
		table := tables.Post(collection)
		createPosts := `
			CREATE TABLE IF NOT EXISTS ` + table + ` (
				id UUID PRIMARY KEY,
				sequence_id BIGINT NOT NULL,
				language TEXT NOT NULL,
				title TEXT NOT NULL,
				content JSONB NOT NULL DEFAULT '{}'::jsonb,
				view_count BIGINT NOT NULL DEFAULT 0,
				date_published TIMESTAMPTZ NOT NULL,
				date_modified TIMESTAMPTZ NOT NULL,
				edit_notes JSONB NOT NULL DEFAULT '[]'::jsonb
			)
		`
		if _, err := pool.Exec(ctx, createPosts); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}

		// Natural key: at most one revision per (sequence id, language).
		uniqueIdx := fmt.Sprintf(`
			CREATE UNIQUE INDEX IF NOT EXISTS %s_seq_lang_idx ON %s (sequence_id, language)
		`, table, table)
		if _, err := pool.Exec(ctx, uniqueIdx); err != nil {
			return fmt.Errorf("create index on %s: %w", table, err)
		}

		langIdx := fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_lang_modified_idx ON %s (language, date_modified DESC)
		`, table, table)
		if _, err := pool.Exec(ctx, langIdx); err != nil {
			return fmt.Errorf("create listing index on %s: %w", table, err)
		}
	}

	createCounters := `
		CREATE TABLE IF NOT EXISTS ` + tables.SequenceCounters + ` (
			collection_name TEXT PRIMARY KEY,
			counter BIGINT NOT NULL DEFAULT 0
		)
	`
	if _, err := pool.Exec(ctx, createCounters); err != nil {
		return fmt.Errorf("create table %s: %w", tables.SequenceCounters, err)
	}

	createKeyPoints := `
		CREATE TABLE IF NOT EXISTS ` + tables.KeyPoints + ` (
			id UUID PRIMARY KEY,
			kind TEXT NOT NULL,
			descriptions JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createKeyPoints); err != nil {
		return fmt.Errorf("create table %s: %w", tables.KeyPoints, err)
	}

	createUnitNames := `
		CREATE TABLE IF NOT EXISTS ` + tables.UnitNames + ` (
			id UUID PRIMARY KEY,
			unit_id TEXT NOT NULL,
			names JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUnitNames); err != nil {
		return fmt.Errorf("create table %s: %w", tables.UnitNames, err)
	}

	createUserSettings := `
		CREATE TABLE IF NOT EXISTS ` + tables.UserSettings + ` (
			user_id UUID PRIMARY KEY,
			settings JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createUserSettings); err != nil {
		return fmt.Errorf("create table %s: %w", tables.UserSettings, err)
	}

	return nil
}

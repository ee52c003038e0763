package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/git-pkgs/enrich/internal/core"
)

const packagesSchema = `
CREATE TABLE IF NOT EXISTS packages (
	name                     text PRIMARY KEY,
	description              text NOT NULL DEFAULT '',
	link                     text NOT NULL DEFAULT '',
	dependencies             jsonb NOT NULL DEFAULT '[]',
	peer_dependencies        jsonb NOT NULL DEFAULT '[]',
	downloads                jsonb NOT NULL DEFAULT '{}',
	dependent_packages_count bigint NOT NULL DEFAULT 0,
	latest_version           text NOT NULL DEFAULT '',
	error                    text NOT NULL DEFAULT '',
	last_updated             timestamptz NOT NULL DEFAULT now()
)`

const upsertPackage = `
INSERT INTO packages (
	name, description, link, dependencies, peer_dependencies,
	downloads, dependent_packages_count, latest_version, error, last_updated
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (name) DO UPDATE SET
	description              = EXCLUDED.description,
	link                     = EXCLUDED.link,
	dependencies             = EXCLUDED.dependencies,
	peer_dependencies        = EXCLUDED.peer_dependencies,
	downloads                = EXCLUDED.downloads,
	dependent_packages_count = EXCLUDED.dependent_packages_count,
	latest_version           = EXCLUDED.latest_version,
	error                    = EXCLUDED.error,
	last_updated             = now()`

// Postgres upserts records into a packages table, keyed by name. The
// last_updated column is set at upsert time, not from the record.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ Sink        = (*Postgres)(nil)
	_ BatchWriter = (*Postgres)(nil)
)

// NewPostgres creates a Postgres sink over an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the packages table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, packagesSchema); err != nil {
		return fmt.Errorf("creating packages table: %w", err)
	}
	return nil
}

// Upsert stores one record, replacing any previous row for the same name.
func (p *Postgres) Upsert(ctx context.Context, rec *core.Record) error {
	deps, err := json.Marshal(rec.Dependencies)
	if err != nil {
		return fmt.Errorf("encoding dependencies: %w", err)
	}
	peerDeps, err := json.Marshal(rec.PeerDependencies)
	if err != nil {
		return fmt.Errorf("encoding peer dependencies: %w", err)
	}
	dl, err := json.Marshal(rec.Downloads)
	if err != nil {
		return fmt.Errorf("encoding downloads: %w", err)
	}

	_, err = p.pool.Exec(ctx, upsertPackage,
		rec.Name, rec.Description, rec.Link, deps, peerDeps,
		dl, rec.DependentPackagesCount, rec.LatestVersion, rec.Error)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", rec.Name, err)
	}
	return nil
}

// WriteBatch stores every record of a batch. It stops at the first
// database error; per-package upstream failures are ordinary records here
// and are stored like any other.
func (p *Postgres) WriteBatch(ctx context.Context, result *core.BatchResult) error {
	for i := range result.Records {
		if err := p.Upsert(ctx, &result.Records[i]); err != nil {
			return err
		}
	}
	return nil
}

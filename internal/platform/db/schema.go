package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SchemaVersion is the migration version this binary was built against.
// Bump together with a new file under migrations/.
const SchemaVersion = 1

// EnsureSchemaVersion verifies at startup that the database carries the
// schema this binary expects. The check runs once; no query-time probing.
func EnsureSchemaVersion(ctx context.Context, pool *pgxpool.Pool) error {
	var version int
	err := pool.QueryRow(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return fmt.Errorf("platform/db: read schema version: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("platform/db: schema_migrations is empty, run migrations first")
	}
	if version != SchemaVersion {
		return fmt.Errorf("platform/db: schema version mismatch: database at %d, binary expects %d", version, SchemaVersion)
	}
	return nil
}

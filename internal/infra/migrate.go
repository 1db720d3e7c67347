package infra

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// NewMigrationProvider builds a goose provider for the *.sql files at the
// root of files. Versions come from the numeric file name prefix and are
// tracked in goose_db_version.
func NewMigrationProvider(db *sql.DB, files fs.FS) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, files)
}

// Migrate applies every pending migration of files through the runner's
// pool. It returns the versions it applied, oldest first, including those
// applied before a later one failed.
func (r *SQLRunner) Migrate(ctx context.Context, files fs.FS) ([]int64, error) {
	db := stdlib.OpenDBFromPool(r.Pool)
	defer db.Close()

	provider, err := NewMigrationProvider(db, files)
	if err != nil {
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	applied := make([]int64, 0, len(results))
	for _, res := range results {
		if res.Error != nil {
			continue
		}
		r.Logger.Info().
			Int64("version", res.Source.Version).
			Str("path", res.Source.Path).
			Dur("took", res.Duration).
			Msg("migration applied")
		applied = append(applied, res.Source.Version)
	}
	if err != nil {
		return applied, fmt.Errorf("migrate: %w", err)
	}
	return applied, nil
}

package sqlite

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/kindpredictions/kindbot/resources"
)

type sqliteClient struct {
	db *sqlx.DB
}

func NewSQLiteClient(ctx context.Context, dir, dbPath string) (*sqliteClient, error) {
	dbx, err := sqlx.Open("sqlite", filepath.Join(dir, dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	dbx.SetMaxOpenConns(42)

	migrationsSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       "migrations",
	}
	if _, _, err = migrate.PlanMigration(dbx.DB, "sqlite3", migrationsSource, migrate.Up, 0); err != nil {
		return nil, fmt.Errorf("migrate plan failed: %w", err)
	}

	n, err := migrate.Exec(dbx.DB, "sqlite3", migrationsSource, migrate.Up)
	if err != nil {
		return nil, fmt.Errorf("migrate up failed: %w", err)
	}
	if n > 0 {
		log.Infof("applied %d migrations!", n)
	}

	return &sqliteClient{db: dbx}, nil
}

func (c *sqliteClient) Close() error {
	return c.db.Close()
}

// SeedDefaults loads the bundled starter predictions into an empty
// predictions table so a fresh deployment has something to serve. A
// non-empty table is left untouched.
func (c *sqliteClient) SeedDefaults(ctx context.Context) error {
	var count int
	if err := c.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM predictions"); err != nil {
		return fmt.Errorf("failed to count predictions: %w", err)
	}
	if count > 0 {
		return nil
	}

	seed, err := resources.FS.ReadFile("seed/default_predictions.sql")
	if err != nil {
		return fmt.Errorf("failed to read seed predictions: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, string(seed)); err != nil {
		return fmt.Errorf("failed to seed predictions: %w", err)
	}
	log.Info("seeded default predictions")
	return nil
}

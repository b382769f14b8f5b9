package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/nikolayk812/storefront/internal/migrations"
	"github.com/nikolayk812/storefront/internal/port"
)

const sqlitePrefix = "sqlite://"

// Open connects to the cart database named by dsn, applies the schema and returns
// the matching repository. postgres:// and postgresql:// DSNs use Postgres,
// anything else is treated as a SQLite file (optionally prefixed with sqlite://).
func Open(ctx context.Context, dsn string) (port.CartRepository, func(), error) {
	if dsn == "" {
		return nil, nil, fmt.Errorf("dsn is empty")
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return openPostgres(ctx, dsn)
	}

	return openSQLite(ctx, strings.TrimPrefix(dsn, sqlitePrefix))
}

func openPostgres(ctx context.Context, dsn string) (port.CartRepository, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("MigratePostgres: %w", err)
	}

	repo, err := NewCart(pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("NewCart: %w", err)
	}

	return repo, pool.Close, nil
}

func openSQLite(ctx context.Context, path string) (port.CartRepository, func(), error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_fk=1"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	// A single connection keeps in-memory databases alive and serialises writers.
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("MigrateSQLite: %w", err)
	}

	repo, err := NewLocalCart(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("NewLocalCart: %w", err)
	}

	return repo, func() { _ = db.Close() }, nil
}

func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	scripts, err := readScripts("postgres")
	if err != nil {
		return err
	}

	for _, script := range scripts {
		if _, err := pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("pool.Exec: %w", err)
		}
	}

	return nil
}

func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	scripts, err := readScripts("sqlite")
	if err != nil {
		return err
	}

	for _, script := range scripts {
		if _, err := db.ExecContext(ctx, script); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}
	}

	return nil
}

func readScripts(dir string) ([]string, error) {
	names, err := fs.Glob(migrations.FS, dir+"/*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("fs.Glob: %w", err)
	}
	slices.Sort(names)

	scripts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return nil, fmt.Errorf("fs.ReadFile[%s]: %w", name, err)
		}
		scripts = append(scripts, string(data))
	}

	return scripts, nil
}

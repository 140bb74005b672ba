package trash

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/tracing"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)&_pragma=foreign_keys(1)"

// openDB opens the SQLite database at path, creating its directory, and
// brings the schema up to date. An existing database is copied to path.bak
// before any pending migration runs.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating trash directory: %w", err)
	}
	_, statErr := os.Stat(path)
	existed := statErr == nil

	log.Debug(log.CatTrash, "Opening trash database", "path", path)
	db, err := sql.Open("sqlite3", "file:"+path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening trash database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening trash database: %w", err)
	}

	if err := migrate(ctx, db, path, existed); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

type migration struct {
	version uint
	name    string
	sql     string
}

// pendingMigrations lists the embedded up migrations newer than current.
// golang-migrate's iofs source does the file name parsing and ordering.
func pendingMigrations(current uint) ([]migration, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	defer func() { _ = src.Close() }()

	var pending []migration
	version, err := src.First()
	for err == nil {
		if version > current {
			m, readErr := readUp(src, version)
			if readErr != nil {
				return nil, readErr
			}
			pending = append(pending, m)
		}
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading migrations: %w", err)
	}
	return pending, nil
}

func readUp(src source.Driver, version uint) (migration, error) {
	r, name, err := src.ReadUp(version)
	if err != nil {
		return migration{}, fmt.Errorf("reading migration %d: %w", version, err)
	}
	defer func() { _ = r.Close() }()
	body, err := io.ReadAll(r)
	if err != nil {
		return migration{}, fmt.Errorf("reading migration %d: %w", version, err)
	}
	return migration{version: version, name: name, sql: string(body)}, nil
}

func migrate(ctx context.Context, db *sql.DB, path string, existed bool) (err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanTrashMigrate)
	defer func() { tracing.End(span, err) }()

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations: %w", err)
	}

	var current uint
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(current)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	span.SetAttributes(attribute.Int("trash.migrations", len(pending)))

	if existed {
		if err := backup(path); err != nil {
			return err
		}
	}

	for _, m := range pending {
		if err := apply(ctx, db, m); err != nil {
			return err
		}
		log.Info(log.CatTrash, "Applied migration", "version", m.version, "name", m.name)
	}
	return nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		m.version, time.Now().Unix()); err != nil {
		return fmt.Errorf("migration %d: recording version: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migration %d: %w", m.version, err)
	}
	return nil
}

// backup copies the database file to path.bak.
func backup(path string) error {
	src, err := os.Open(path) // #nosec G304 -- path is the configured trash db
	if err != nil {
		return fmt.Errorf("backing up trash database: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("backing up trash database: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("backing up trash database: %w", err)
	}
	return dst.Close()
}

// Package registry persists serialized pipelines in a sqlite database, so
// fitted pipelines can be versioned, shared and reloaded.
package registry

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound is returned when no pipeline matches the requested name and
// version.
var ErrNotFound = errors.New("pipeline not found")

const schema = `
CREATE TABLE IF NOT EXISTS pipelines (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	document   BLOB    NOT NULL,
	created_at TEXT    NOT NULL,
	UNIQUE (name, version)
);
`

// Entry describes one stored pipeline.
type Entry struct {
	Name      string
	Version   int
	CreatedAt time.Time
}

// Store is a sqlite-backed pipeline registry.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and if needed creates) a registry database at the given path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open registry %s", path)
	}

	_, err = db.Exec(schema)
	if err != nil {
		_ = db.Close()

		return nil, errors.Wrap(err, "unable to migrate registry schema")
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return errors.Wrap(s.db.Close(), "unable to close registry")
}

// Save stores a serialized pipeline document under a name and version.
// Saving an existing (name, version) pair fails.
func (s *Store) Save(ctx context.Context, name string, version int, document []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipelines (name, version, document, created_at) VALUES (?, ?, ?, ?)`,
		name, version, document, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return errors.Wrapf(err, "unable to save pipeline %s version %d", name, version)
	}

	s.logger.Info("pipeline saved", "name", name, "version", version, "bytes", len(document))

	return nil
}

// Load returns the document stored under a name and version.
func (s *Store) Load(ctx context.Context, name string, version int) ([]byte, error) {
	var document []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM pipelines WHERE name = ? AND version = ?`,
		name, version,
	).Scan(&document)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "pipeline %s version %d", name, version)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "unable to load pipeline %s version %d", name, version)
	}

	return document, nil
}

// Latest returns the highest stored version of a pipeline and its document.
func (s *Store) Latest(ctx context.Context, name string) (int, []byte, error) {
	var (
		version  int
		document []byte
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT version, document FROM pipelines WHERE name = ? ORDER BY version DESC LIMIT 1`,
		name,
	).Scan(&version, &document)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, errors.Wrapf(ErrNotFound, "pipeline %s", name)
	}

	if err != nil {
		return 0, nil, errors.Wrapf(err, "unable to load latest pipeline %s", name)
	}

	return version, document, nil
}

// List returns every stored pipeline, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, version, created_at FROM pipelines ORDER BY created_at DESC, version DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to list pipelines")
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		var (
			entry   Entry
			created string
		)

		err = rows.Scan(&entry.Name, &entry.Version, &created)
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan pipeline entry")
		}

		entry.CreatedAt, err = time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse pipeline timestamp")
		}

		entries = append(entries, entry)
	}

	return entries, errors.Wrap(rows.Err(), "unable to iterate pipelines")
}

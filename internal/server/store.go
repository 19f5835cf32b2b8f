package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrProjectNotFound is returned for operations on unknown projects.
var ErrProjectNotFound = errors.New("project not found")

// ErrProjectExists is returned when creating a project whose name is taken.
var ErrProjectExists = errors.New("project already exists")

// Store persists projects and their session documents in sqlite. Documents
// are stored as opaque JSON: the server never interprets session contents,
// it only replaces them wholesale.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite is happiest with a single writer connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS projects (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	project    TEXT PRIMARY KEY REFERENCES projects(name) ON DELETE CASCADE,
	doc        TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (s *Store) CreateProject(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProjectExists
		}
		return err
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, name string) error {
	// Explicit two-step delete: CASCADE requires foreign_keys=on, which we
	// don't want to depend on per-connection.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE project = ?`, name); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *Store) projectExists(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM projects WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetSession returns the stored document JSON, or ok=false when the project
// has no session yet.
func (s *Store) GetSession(ctx context.Context, project string) (doc []byte, ok bool, err error) {
	var raw string
	err = s.db.QueryRowContext(ctx, `SELECT doc FROM sessions WHERE project = ?`, project).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		exists, eerr := s.projectExists(ctx, project)
		if eerr != nil {
			return nil, false, eerr
		}
		if !exists {
			return nil, false, ErrProjectNotFound
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(raw), true, nil
}

// PutSession replaces the stored document for a project wholesale.
func (s *Store) PutSession(ctx context.Context, project string, doc []byte) error {
	exists, err := s.projectExists(ctx, project)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProjectNotFound
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO sessions (project, doc, updated_at) VALUES (?, ?, ?)
ON CONFLICT(project) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		project, string(doc), time.Now().UTC().Format(time.RFC3339))
	return err
}

func isUniqueViolation(err error) bool {
	// modernc/sqlite wraps sqlite error codes in the message; constraint
	// violations mention UNIQUE.
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

// internal/service/project_service.go
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"overlaytv/internal/models"
)

// Sentinel errors, compared with errors.Is.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrCorruptDocument = errors.New("stored project document is corrupt")
)

// SQL dialects the store runs on. Queries are written with ? placeholders
// and rebound to $n for postgres.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

const queryTimeout = 5 * time.Second

const schema = `
	CREATE TABLE IF NOT EXISTS projects (
		id         TEXT PRIMARY KEY,
		document   TEXT NOT NULL,
		version    INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)
`

// ProjectService is the remote document store behind share-by-id links.
type ProjectService struct {
	DB      *sql.DB
	Dialect string

	// Now is the clock used for timestamps; nil means time.Now.
	Now func() time.Time
	Log *slog.Logger
}

func (s *ProjectService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *ProjectService) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.New(slog.DiscardHandler)
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (s *ProjectService) rebind(query string) string {
	if s.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the projects table if it does not exist.
func (s *ProjectService) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate projects: %w", err)
	}
	return nil
}

// Ping checks the database is reachable.
func (s *ProjectService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// CreateProject stores p under a fresh id at version 1.
func (s *ProjectService) CreateProject(ctx context.Context, p models.Project) (*models.ProjectRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec := &models.ProjectRecord{
		ID:        uuid.New(),
		Project:   p,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := s.rebind(`
		INSERT INTO projects (id, document, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	stamp := now.Format(time.RFC3339Nano)
	if _, err := s.DB.ExecContext(ctx, query, rec.ID.String(), string(doc), rec.Version, stamp, stamp); err != nil {
		return nil, err
	}

	s.logger().Info("project created", "id", rec.ID, "annotations", len(p.Annotations))
	return rec, nil
}

// GetProject fetches a project by id.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.ProjectRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := s.rebind(`
		SELECT document, version, created_at, updated_at
		FROM projects
		WHERE id = ?
	`)

	var doc, created, updated string
	rec := &models.ProjectRecord{ID: id}
	err := s.DB.QueryRowContext(ctx, query, id.String()).Scan(&doc, &rec.Version, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(doc), &rec.Project); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, id, err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("%w: %s: created_at: %v", ErrCorruptDocument, id, err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("%w: %s: updated_at: %v", ErrCorruptDocument, id, err)
	}
	return rec, nil
}

// UpdateProject replaces the stored document and bumps the version counter.
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, p models.Project) (*models.ProjectRecord, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	updateCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := s.rebind(`
		UPDATE projects
		SET document   = ?,
		    version    = version + 1,
		    updated_at = ?
		WHERE id = ?
	`)
	result, err := s.DB.ExecContext(updateCtx, query, string(doc), s.now().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrProjectNotFound
	}

	s.logger().Info("project updated", "id", id, "annotations", len(p.Annotations))
	return s.GetProject(ctx, id)
}

// DeleteProject permanently removes a project.
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	result, err := s.DB.ExecContext(ctx, s.rebind(`DELETE FROM projects WHERE id = ?`), id.String())
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrProjectNotFound
	}
	s.logger().Info("project deleted", "id", id)
	return nil
}

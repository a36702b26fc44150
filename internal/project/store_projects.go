package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const projectColumns = `id, name, video_path, source_language, target_language, voice, clip_dir, output_path, created_at, updated_at`

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// CreateProject inserts a new project and returns it with its assigned ID.
// The video path must be unique across projects.
func (s *Store) CreateProject(ctx context.Context, p Project) (*Project, error) {
	if strings.TrimSpace(p.VideoPath) == "" {
		return nil, errors.New("project requires a video path")
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = strings.TrimSpace(p.VideoPath)
	}
	now := utcNow()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := s.execWithRetry(ctx,
		`INSERT INTO projects (name, video_path, source_language, target_language, voice, clip_dir, output_path, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.VideoPath, p.SourceLanguage, p.TargetLanguage, p.Voice, p.ClipDir, p.OutputPath,
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("project id: %w", err)
	}
	p.ID = id
	return &p, nil
}

// UpdateProject persists mutable project fields.
func (s *Store) UpdateProject(ctx context.Context, p *Project) error {
	if p == nil || p.ID == 0 {
		return errors.New("project not persisted")
	}
	p.UpdatedAt = utcNow()
	res, err := s.execWithRetry(ctx,
		`UPDATE projects SET name = ?, source_language = ?, target_language = ?, voice = ?, clip_dir = ?, output_path = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.SourceLanguage, p.TargetLanguage, p.Voice, p.ClipDir, p.OutputPath,
		formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// GetProject loads a project by ID.
func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectByVideo loads the project tracking the given source video.
func (s *Store) GetProjectByVideo(ctx context.Context, videoPath string) (*Project, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+projectColumns+` FROM projects WHERE video_path = ?`, videoPath)
	return scanProject(row)
}

// ListProjects returns all projects, most recently updated first.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT `+projectColumns+` FROM projects ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project, its segments, and its job history.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	p, err := scanProjectRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProjectRow(row rowScanner) (*Project, error) {
	var (
		p                  Project
		createdAt, updated string
	)
	err := row.Scan(&p.ID, &p.Name, &p.VideoPath, &p.SourceLanguage, &p.TargetLanguage,
		&p.Voice, &p.ClipDir, &p.OutputPath, &createdAt, &updated)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updated)
	return &p, nil
}

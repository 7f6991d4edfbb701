package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
)

var _ repository.ProjectRepository = (*ProjectStore)(nil)

// ProjectStore persists projects. Tech is stored as a JSON array.
type ProjectStore struct {
	conn *sql.DB
}

const projectColumns = `id, owner_id, title, description, tech, image, github, live, status, created_at, updated_at`

// Create sets ID and timestamps on p and inserts it.
func (s *ProjectStore) Create(ctx context.Context, p *model.Project) error {
	p.ID = xid.New().String()
	ts := now()
	p.CreatedAt = ts
	p.UpdatedAt = ts

	tech, err := encodeTech(p.Tech)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO projects (`+projectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.OwnerID,
		p.Title,
		p.Description,
		tech,
		p.Image,
		p.GitHub,
		p.Live,
		p.Status,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, ownerID, id string) (*model.Project, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

func (s *ProjectStore) List(ctx context.Context, ownerID string, opts repository.ProjectListOptions) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE owner_id = ?`
	args := []any{ownerID}
	if opts.PublishedOnly {
		query += ` AND status = ?`
		args = append(args, model.StatusPublished)
	}
	query += ` ORDER BY rowid`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	projects := make([]model.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}
	return projects, nil
}

// Update writes every mutable field and refreshes UpdatedAt. The WHERE clause
// includes the owner, so a foreign id is NotFound.
func (s *ProjectStore) Update(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = touched(p.CreatedAt)

	tech, err := encodeTech(p.Tech)
	if err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, tech = ?, image = ?, github = ?, live = ?, status = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		p.Title,
		p.Description,
		tech,
		p.Image,
		p.GitHub,
		p.Live,
		p.Status,
		p.UpdatedAt,
		p.ID,
		p.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", p.ID, err)
	}
	return requireRow(result, "project", p.ID)
}

func (s *ProjectStore) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return requireRow(result, "project", id)
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		p    model.Project
		tech string
	)
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &tech,
		&p.Image, &p.GitHub, &p.Live, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tech), &p.Tech); err != nil {
		return nil, fmt.Errorf("decoding tech: %w", err)
	}
	if p.Tech == nil {
		p.Tech = []string{}
	}
	return &p, nil
}

func encodeTech(tech []string) (string, error) {
	if tech == nil {
		tech = []string{}
	}
	b, err := json.Marshal(tech)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding tech: %w", err)
	}
	return string(b), nil
}

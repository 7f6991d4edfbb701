package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/xid"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
)

var _ repository.SkillRepository = (*SkillStore)(nil)

type SkillStore struct {
	conn *sql.DB
}

const skillColumns = `id, owner_id, name, category, proficiency, created_at, updated_at`

func (s *SkillStore) Create(ctx context.Context, sk *model.Skill) error {
	sk.ID = xid.New().String()
	ts := now()
	sk.CreatedAt = ts
	sk.UpdatedAt = ts

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO skills (`+skillColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sk.ID, sk.OwnerID, sk.Name, sk.Category, sk.Proficiency, sk.CreatedAt, sk.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating skill: %w", err)
	}
	return nil
}

func (s *SkillStore) Get(ctx context.Context, ownerID, id string) (*model.Skill, error) {
	var sk model.Skill
	err := s.conn.QueryRowContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	).Scan(&sk.ID, &sk.OwnerID, &sk.Name, &sk.Category, &sk.Proficiency, &sk.CreatedAt, &sk.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("skill", id)
		}
		return nil, fmt.Errorf("sqlite: getting skill %s: %w", id, err)
	}
	return &sk, nil
}

func (s *SkillStore) List(ctx context.Context, ownerID string) ([]model.Skill, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE owner_id = ? ORDER BY rowid`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.Skill, 0)
	for rows.Next() {
		var sk model.Skill
		if err := rows.Scan(&sk.ID, &sk.OwnerID, &sk.Name, &sk.Category, &sk.Proficiency, &sk.CreatedAt, &sk.UpdatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning skill row: %w", err)
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating skills: %w", err)
	}
	return skills, nil
}

func (s *SkillStore) Update(ctx context.Context, sk *model.Skill) error {
	sk.UpdatedAt = touched(sk.CreatedAt)

	result, err := s.conn.ExecContext(ctx,
		`UPDATE skills SET name = ?, category = ?, proficiency = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ?`,
		sk.Name, sk.Category, sk.Proficiency, sk.UpdatedAt, sk.ID, sk.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating skill %s: %w", sk.ID, err)
	}
	return requireRow(result, "skill", sk.ID)
}

func (s *SkillStore) Delete(ctx context.Context, ownerID, id string) error {
	result, err := s.conn.ExecContext(ctx,
		`DELETE FROM skills WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting skill %s: %w", id, err)
	}
	return requireRow(result, "skill", id)
}

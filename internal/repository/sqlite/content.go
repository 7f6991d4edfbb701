package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
)

var _ repository.ContentRepository = (*ContentStore)(nil)

// ContentStore persists PortfolioContent, one JSON column per section.
type ContentStore struct {
	conn *sql.DB
}

func (s *ContentStore) Get(ctx context.Context, userID string) (*model.PortfolioContent, error) {
	var (
		about, hero, social string
		c                   model.PortfolioContent
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT about, hero, social, updated_at FROM portfolio_content WHERE user_id = ?`,
		userID,
	).Scan(&about, &hero, &social, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("content", userID)
		}
		return nil, fmt.Errorf("sqlite: getting content for user %s: %w", userID, err)
	}

	if err := json.Unmarshal([]byte(about), &c.About); err != nil {
		return nil, fmt.Errorf("sqlite: decoding about for user %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(hero), &c.Hero); err != nil {
		return nil, fmt.Errorf("sqlite: decoding hero for user %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(social), &c.Social); err != nil {
		return nil, fmt.Errorf("sqlite: decoding social for user %s: %w", userID, err)
	}
	if c.Hero.HeroPatternProps == nil {
		c.Hero.HeroPatternProps = map[string]any{}
	}
	return &c, nil
}

// SaveSection upserts the row. On insert every section comes from c; on
// conflict only the named section column and updated_at change.
//
// MERGE RULE:
// The service has already merged the patch into a full copy of the content,
// but only the edited section is written back. Two owners' tabs editing
// "about" and "social" at once therefore never clobber each other: each
// UPDATE touches a different column.
func (s *ContentStore) SaveSection(ctx context.Context, userID string, section model.Section, c *model.PortfolioContent) error {
	column, ok := sectionColumns[section]
	if !ok {
		return fmt.Errorf("sqlite: unknown content section %q", section)
	}

	about, hero, social, err := encodeSections(c)
	if err != nil {
		return err
	}

	_, err = s.conn.ExecContext(ctx,
		`INSERT INTO portfolio_content (user_id, about, hero, social, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET `+column+` = excluded.`+column+`, updated_at = excluded.updated_at`,
		userID, about, hero, social, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: saving %s for user %s: %w", section, userID, err)
	}
	return nil
}

var sectionColumns = map[model.Section]string{
	model.SectionAbout:  "about",
	model.SectionHero:   "hero",
	model.SectionSocial: "social",
}

func encodeSections(c *model.PortfolioContent) (about, hero, social string, err error) {
	a, err := json.Marshal(c.About)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding about: %w", err)
	}
	h, err := json.Marshal(c.Hero)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding hero: %w", err)
	}
	so, err := json.Marshal(c.Social)
	if err != nil {
		return "", "", "", fmt.Errorf("sqlite: encoding social: %w", err)
	}
	return string(a), string(h), string(so), nil
}

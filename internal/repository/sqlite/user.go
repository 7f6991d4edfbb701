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

var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists accounts.
type UserStore struct {
	conn *sql.DB
}

const userColumns = `id, username, email, name, password_hash, github_id, is_active, created_at, updated_at`

// Create inserts the user and its initial portfolio content atomically, so an
// account never exists without content. ID and timestamps are set on user.
func (s *UserStore) Create(ctx context.Context, user *model.User, content *model.PortfolioContent) (err error) {
	user.ID = xid.New().String()
	ts := now()
	user.CreatedAt = ts
	user.UpdatedAt = ts
	content.UpdatedAt = ts

	about, hero, social, err := encodeSections(content)
	if err != nil {
		return err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning user transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO users (id, username, email, name, password_hash, github_id, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.Name,
		user.PasswordHash,
		nullableInt64(user.GitHubID),
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return userWriteError("creating user", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO portfolio_content (user_id, about, hero, social, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID, about, hero, social, content.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: seeding content for user %s: %w", user.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user %s: %w", user.ID, err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	return s.getBy(ctx, "id", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.getBy(ctx, "email", email)
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.getBy(ctx, "username", username)
}

func (s *UserStore) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	return s.getBy(ctx, "github_id", githubID)
}

// getBy looks a user up by one unique column. column is always a literal
// from this file, never client input.
func (s *UserStore) getBy(ctx context.Context, column string, value any) (*model.User, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`,
		value,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", fmt.Sprint(value))
		}
		return nil, fmt.Errorf("sqlite: getting user by %s: %w", column, err)
	}
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = now()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE users
		 SET name = ?, username = ?, email = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.Username,
		user.Email,
		user.IsActive,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return userWriteError("updating user "+user.ID, err)
	}
	return requireRow(result, "user", user.ID)
}

func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating password for user %s: %w", id, err)
	}
	return requireRow(result, "user", id)
}

// LinkGitHub attaches a GitHub account. A GitHub account already linked to
// someone else is a conflict.
func (s *UserStore) LinkGitHub(ctx context.Context, id string, githubID int64) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE users SET github_id = ?, updated_at = ? WHERE id = ?`,
		githubID, now(), id,
	)
	if err != nil {
		return userWriteError("linking GitHub for user "+id, err)
	}
	return requireRow(result, "user", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&githubID,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		u.GitHubID = &id
	}
	return &u, nil
}

// userWriteError turns UNIQUE violations into field-level conflicts.
func userWriteError(op string, err error) error {
	switch uniqueViolation(err) {
	case "users.email":
		return apperror.Conflict("email", "email is already registered")
	case "users.username":
		return apperror.Conflict("username", "username is already taken")
	case "users.github_id":
		return apperror.Conflict("github", "this GitHub account is linked to another user")
	}
	return fmt.Errorf("sqlite: %s: %w", op, err)
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// requireRow maps "zero rows affected" to NotFound.
func requireRow(result sql.Result, resource, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

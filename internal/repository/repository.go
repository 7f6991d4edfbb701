// Package repository declares the persistence contracts the services depend on.
//
// Every collection query takes the owner's user id: a record that exists but
// belongs to someone else is reported as not found.
package repository

import (
	"context"

	"github.com/sakif/flexfolio/internal/model"
)

type UserRepository interface {
	// Create inserts the user together with its initial portfolio content in
	// one transaction. Username and email collisions are apperror.ErrConflict.
	Create(ctx context.Context, user *model.User, content *model.PortfolioContent) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// Update writes name, username, email and isActive.
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	LinkGitHub(ctx context.Context, id string, githubID int64) error
}

type ContentRepository interface {
	// Get returns apperror.ErrNotFound when the user has no stored content.
	Get(ctx context.Context, userID string) (*model.PortfolioContent, error)
	// SaveSection writes one section of c (and c.UpdatedAt), creating the
	// row from c when none exists. Other stored sections are left untouched.
	SaveSection(ctx context.Context, userID string, section model.Section, c *model.PortfolioContent) error
}

type ProjectListOptions struct {
	PublishedOnly bool
}

type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, ownerID, id string) (*model.Project, error)
	// List returns the owner's projects in insertion order.
	List(ctx context.Context, ownerID string, opts ProjectListOptions) ([]model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	Delete(ctx context.Context, ownerID, id string) error
}

type SkillRepository interface {
	Create(ctx context.Context, s *model.Skill) error
	Get(ctx context.Context, ownerID, id string) (*model.Skill, error)
	List(ctx context.Context, ownerID string) ([]model.Skill, error)
	Update(ctx context.Context, s *model.Skill) error
	Delete(ctx context.Context, ownerID, id string) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *model.Message) error
	Get(ctx context.Context, ownerID, id string) (*model.Message, error)
	// List returns the owner's messages in the order they arrived.
	List(ctx context.Context, ownerID string) ([]model.Message, error)
	SetRead(ctx context.Context, ownerID, id string, isRead bool) error
	Delete(ctx context.Context, ownerID, id string) error
	CountUnread(ctx context.Context, ownerID string) (int, error)
}

package service

import (
	"context"
	"fmt"

	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
)

// PortfolioService assembles the public page for a username from the
// content, project and skill collections.
type PortfolioService struct {
	users    repository.UserRepository
	content  *ContentService
	projects *ProjectService
	skills   *SkillService
}

func NewPortfolioService(
	users repository.UserRepository,
	content *ContentService,
	projects *ProjectService,
	skills *SkillService,
) *PortfolioService {
	return &PortfolioService{users: users, content: content, projects: projects, skills: skills}
}

// Get returns the public portfolio, NotFound for an unknown username, or
// Offline when the owner has deactivated it. Drafts never appear.
func (s *PortfolioService) Get(ctx context.Context, username string) (*model.Portfolio, error) {
	user, err := resolvePublicUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}

	content, err := s.content.load(ctx, user)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListPublished(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", user.Username, err)
	}
	skills, err := s.skills.Grouped(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("portfolio %s: %w", user.Username, err)
	}

	return &model.Portfolio{
		User:     model.PublicUser{Username: user.Username, Name: user.Name},
		Content:  content,
		Projects: projects,
		Skills:   skills,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
	"github.com/sakif/flexfolio/internal/validate"
)

// ProjectService manages an owner's project list. New projects start as
// Draft unless the client says otherwise.
type ProjectService struct {
	repo     repository.ProjectRepository
	validate *validate.Validator
	logger   *slog.Logger
}

func NewProjectService(repo repository.ProjectRepository, v *validate.Validator, logger *slog.Logger) *ProjectService {
	return &ProjectService{repo: repo, validate: v, logger: logger}
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in model.ProjectInput) (*model.Project, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Tech = trimAll(in.Tech)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = model.StatusDraft
	}
	p := &model.Project{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Tech:        in.Tech,
		Image:       in.Image,
		GitHub:      in.GitHub,
		Live:        in.Live,
		Status:      status,
	}
	if p.Tech == nil {
		p.Tech = []string{}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("ownerID", ownerID),
		slog.String("id", p.ID),
		slog.String("status", p.Status),
	)
	return p, nil
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id string) (*model.Project, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// List returns every project of the owner, drafts included, in the order
// they were created.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]model.Project, error) {
	projects, err := s.repo.List(ctx, ownerID, repository.ProjectListOptions{})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// ListPublished is the renderer's view: Published projects only.
func (s *ProjectService) ListPublished(ctx context.Context, ownerID string) ([]model.Project, error) {
	projects, err := s.repo.List(ctx, ownerID, repository.ProjectListOptions{PublishedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing published projects: %w", err)
	}
	return projects, nil
}

// Update merges patch into the stored project. A project owned by someone
// else is NotFound.
func (s *ProjectService) Update(ctx context.Context, ownerID, id string, patch model.ProjectPatch) (*model.Project, error) {
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		patch.Title = &t
	}
	if patch.Tech != nil {
		tech := trimAll(*patch.Tech)
		if tech == nil {
			tech = []string{}
		}
		patch.Tech = &tech
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	p, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p)

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating project %s: %w", id, err)
	}

	s.logger.Info("project updated",
		slog.String("ownerID", ownerID),
		slog.String("id", id),
		slog.String("status", p.Status),
	)
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", slog.String("ownerID", ownerID), slog.String("id", id))
	return nil
}

func trimAll(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

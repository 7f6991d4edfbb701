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

type SkillService struct {
	repo     repository.SkillRepository
	validate *validate.Validator
	logger   *slog.Logger
}

func NewSkillService(repo repository.SkillRepository, v *validate.Validator, logger *slog.Logger) *SkillService {
	return &SkillService{repo: repo, validate: v, logger: logger}
}

// Create adds a skill. Proficiency outside 0..100 is a validation error and
// nothing is stored.
func (s *SkillService) Create(ctx context.Context, ownerID string, in model.SkillInput) (*model.Skill, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	sk := &model.Skill{
		OwnerID:     ownerID,
		Name:        in.Name,
		Category:    in.Category,
		Proficiency: in.Proficiency,
	}
	if err := s.repo.Create(ctx, sk); err != nil {
		return nil, fmt.Errorf("creating skill: %w", err)
	}

	s.logger.Info("skill created", slog.String("ownerID", ownerID), slog.String("id", sk.ID))
	return sk, nil
}

func (s *SkillService) Get(ctx context.Context, ownerID, id string) (*model.Skill, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *SkillService) List(ctx context.Context, ownerID string) ([]model.Skill, error) {
	skills, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	return skills, nil
}

// Grouped returns the owner's skills grouped by category in first-appearance
// order, the shape the portfolio page renders.
func (s *SkillService) Grouped(ctx context.Context, ownerID string) ([]model.SkillGroup, error) {
	skills, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return model.GroupSkills(skills), nil
}

func (s *SkillService) Update(ctx context.Context, ownerID, id string, patch model.SkillPatch) (*model.Skill, error) {
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		patch.Name = &n
	}
	if patch.Category != nil {
		c := strings.TrimSpace(*patch.Category)
		patch.Category = &c
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	sk, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(sk)

	if err := s.repo.Update(ctx, sk); err != nil {
		return nil, fmt.Errorf("updating skill %s: %w", id, err)
	}

	s.logger.Info("skill updated", slog.String("ownerID", ownerID), slog.String("id", id))
	return sk, nil
}

func (s *SkillService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("skill deleted", slog.String("ownerID", ownerID), slog.String("id", id))
	return nil
}

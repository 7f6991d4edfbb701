package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
	"github.com/sakif/flexfolio/internal/schema"
	"github.com/sakif/flexfolio/internal/validate"
)

// timeNow is the clock for content timestamps; tests replace it.
var timeNow = func() time.Time { return time.Now().UTC() }

// SectionEditor saves one section patch and returns the resulting content.
// The live editor persists; the demo editor only shows what would happen.
type SectionEditor interface {
	Save(ctx context.Context, userID, section string, raw []byte) (*model.PortfolioContent, error)
	IsDemo() bool
}

// PatchDecoder turns a raw JSON section patch into a validated SectionPatch.
// Unknown keys and wrong types are caught by the JSON schema; enums, ranges
// and formats by the struct tags.
type PatchDecoder struct {
	schemas  *schema.Sections
	validate *validate.Validator
}

func NewPatchDecoder(schemas *schema.Sections, v *validate.Validator) *PatchDecoder {
	return &PatchDecoder{schemas: schemas, validate: v}
}

func (d *PatchDecoder) Decode(section string, raw []byte) (model.SectionPatch, error) {
	sec, ok := model.ParseSection(section)
	if !ok {
		return nil, apperror.ValidationFailed("section",
			fmt.Sprintf("section must be one of: about, hero, social (got %q)", section))
	}

	if err := d.schemas.Validate(sec, raw); err != nil {
		return nil, err
	}

	patch, _ := model.NewPatch(sec)
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(patch); err != nil {
		return nil, apperror.ValidationFailed("", "request body must be a JSON object")
	}
	if err := d.validate.Struct(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// ContentService reads and edits PortfolioContent.
type ContentService struct {
	users   repository.UserRepository
	content repository.ContentRepository
	decoder *PatchDecoder
	logger  *slog.Logger
}

var _ SectionEditor = (*ContentService)(nil)

func NewContentService(
	users repository.UserRepository,
	content repository.ContentRepository,
	decoder *PatchDecoder,
	logger *slog.Logger,
) *ContentService {
	return &ContentService{
		users:   users,
		content: content,
		decoder: decoder,
		logger:  logger,
	}
}

// Get is the editor read: the owner's content whether or not the portfolio
// is online. A user without stored content gets the default shape.
func (s *ContentService) Get(ctx context.Context, userID string) (*model.PortfolioContent, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, user)
}

// GetByUsername is the public read. It returns Offline for a deactivated
// owner and NotFound for an unknown username.
func (s *ContentService) GetByUsername(ctx context.Context, username string) (*model.PortfolioContent, error) {
	user, err := resolvePublicUser(ctx, s.users, username)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, user)
}

// Save merges a raw section patch into the user's content. Fields absent
// from the patch keep their stored value. Nothing is written when the patch
// is invalid.
func (s *ContentService) Save(ctx context.Context, userID, section string, raw []byte) (*model.PortfolioContent, error) {
	patch, err := s.decoder.Decode(section, raw)
	if err != nil {
		return nil, err
	}
	return s.MergePatch(ctx, userID, patch)
}

// MergePatch applies an already decoded patch.
func (s *ContentService) MergePatch(ctx context.Context, userID string, patch model.SectionPatch) (*model.PortfolioContent, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	current.Apply(patch)
	current.UpdatedAt = timeNow()

	if err := s.content.SaveSection(ctx, userID, patch.Section(), current); err != nil {
		s.logger.Error("failed to save content section",
			slog.String("userID", userID),
			slog.String("section", string(patch.Section())),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving %s for %s: %w", patch.Section(), userID, err)
	}

	s.logger.Info("content section saved",
		slog.String("userID", userID),
		slog.String("section", string(patch.Section())),
	)
	return current, nil
}

func (s *ContentService) IsDemo() bool { return false }

func (s *ContentService) load(ctx context.Context, user *model.User) (*model.PortfolioContent, error) {
	c, err := s.content.Get(ctx, user.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return model.DefaultContent(user.Name, user.Email), nil
		}
		return nil, fmt.Errorf("loading content for %s: %w", user.ID, err)
	}
	return c, nil
}

// resolvePublicUser resolves a username for anonymous readers.
//
// OFFLINE VS NOT FOUND:
// An unknown username is NotFound (404). A known owner who took the portfolio
// offline is Offline (410), so a visitor with an old link learns the page
// existed and may come back. Owners still read and edit their own content
// through Get, which skips this check.
func resolvePublicUser(ctx context.Context, users repository.UserRepository, username string) (*model.User, error) {
	username = normalize(username)
	user, err := users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("portfolio", username)
		}
		return nil, fmt.Errorf("resolving %s: %w", username, err)
	}
	if !user.IsActive {
		return nil, apperror.Offline(username)
	}
	return user, nil
}

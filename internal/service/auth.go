// Package service holds FlexFolio's business rules. Handlers translate HTTP
// into calls here; services talk to the repositories and never see a request.
//
//	Handler (HTTP) → Service (rules, validation) → Repository (SQLite)
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
	"github.com/sakif/flexfolio/internal/validate"
)

// AuthService owns accounts: registration, login, session verification,
// password changes, account settings and GitHub linking.
type AuthService struct {
	users     repository.UserRepository
	content   repository.ContentRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	validate  *validate.Validator
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	content repository.ContentRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	v *validate.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		content:   content,
		tokens:    tokens,
		passwords: passwords,
		validate:  v,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with a freshly issued token so the
// handler can set the cookie and respond in one step.
type AuthResult struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Register creates an account with default portfolio content and returns the
// new user's id. Email and username are stored lower-cased.
func (s *AuthService) Register(ctx context.Context, in model.RegisterInput) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalize(in.Email)
	in.Username = normalize(in.Username)

	if err := s.validate.Struct(in); err != nil {
		return "", err
	}

	if err := s.ensureAvailable(ctx, "", in.Email, in.Username); err != nil {
		return "", err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return "", fmt.Errorf("registering %s: %w", in.Username, err)
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	// The UNIQUE constraints still catch a concurrent registration that
	// slipped past ensureAvailable.
	if err := s.users.Create(ctx, user, model.DefaultContent(in.Name, in.Email)); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return "", err
		}
		return "", fmt.Errorf("registering %s: %w", in.Username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user.ID, nil
}

// Login checks email and password. Every failure, unknown email included,
// is the same InvalidCredentials error. Deactivated owners can still sign in
// to reactivate their portfolio.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalize(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Error("password verification failed",
				slog.String("userID", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, apperror.InvalidCredentials()
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return s.issue(user)
}

// VerifySession resolves a token to the current identity of its user. It
// returns (nil, nil) for invalid or expired tokens and for users that no
// longer exist, so callers treat all of those as anonymous.
func (s *AuthService) VerifySession(ctx context.Context, token string) (*model.Session, error) {
	claimed, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("verifying session: %w", err)
	}
	return user.Session(), nil
}

// ChangePassword replaces the password after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=6,max=72", "newPassword"); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.passwords.Verify(user.PasswordHash, oldPassword); err != nil {
		return apperror.InvalidCredentials()
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("changing password for %s: %w", userID, err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("changing password for %s: %w", userID, err)
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

// UpdateAccount renames the account. A new token is issued because the
// session carries username and name.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, patch model.AccountPatch) (*AuthResult, error) {
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		patch.Name = &v
	}
	if patch.Email != nil {
		v := normalize(*patch.Email)
		patch.Email = &v
	}
	if patch.Username != nil {
		v := normalize(*patch.Username)
		patch.Username = &v
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var email, username string
	if patch.Email != nil && *patch.Email != user.Email {
		email = *patch.Email
		user.Email = email
	}
	if patch.Username != nil && *patch.Username != user.Username {
		username = *patch.Username
		user.Username = username
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}

	if err := s.ensureAvailable(ctx, userID, email, username); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("updating account %s: %w", userID, err)
	}

	s.logger.Info("account updated",
		slog.String("userID", userID),
		slog.String("username", user.Username),
	)
	return s.issue(user)
}

// SetActive takes a portfolio offline (false) or back online (true). The
// owner keeps full editor access either way.
func (s *AuthService) SetActive(ctx context.Context, userID string, active bool) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive == active {
		return user, nil
	}

	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("setting active=%t for %s: %w", active, userID, err)
	}

	s.logger.Info("portfolio status changed",
		slog.String("userID", userID),
		slog.Bool("active", active),
	)
	return user, nil
}

// CurrentUser returns the account behind a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// LoginWithGitHub signs in the account linked to gh. GitHub never creates
// accounts: an unlinked GitHub identity is NotFound.
func (s *AuthService) LoginWithGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil {
		return nil, fmt.Errorf("github login: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, gh.ID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NotFound("linked account for GitHub user", gh.Login)
		}
		return nil, fmt.Errorf("github login: %w", err)
	}

	s.logger.Info("user logged in via GitHub",
		slog.String("userID", user.ID),
		slog.String("githubLogin", gh.Login),
	)
	return s.issue(user)
}

// LinkGitHub attaches gh to the signed-in owner. When the owner has no GitHub
// link in their social section yet, the profile URL is filled in.
func (s *AuthService) LinkGitHub(ctx context.Context, userID string, gh *auth.GitHubUser) error {
	if gh == nil {
		return fmt.Errorf("linking GitHub: GitHub user must not be nil")
	}
	if err := s.users.LinkGitHub(ctx, userID, gh.ID); err != nil {
		return err
	}

	c, err := s.content.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			return fmt.Errorf("linking GitHub for %s: %w", userID, err)
		}
		user, uerr := s.users.GetByID(ctx, userID)
		if uerr != nil {
			return uerr
		}
		c = model.DefaultContent(user.Name, user.Email)
	}
	if c.Social.GitHub == "" {
		url := gh.ProfileURL()
		c.Apply(model.SocialPatch{GitHub: &url})
		c.UpdatedAt = timeNow()
		if err := s.content.SaveSection(ctx, userID, model.SectionSocial, c); err != nil {
			return fmt.Errorf("linking GitHub for %s: %w", userID, err)
		}
	}

	s.logger.Info("GitHub account linked",
		slog.String("userID", userID),
		slog.Int64("githubID", gh.ID),
	)
	return nil
}

// ensureAvailable reports a Conflict when email or username belongs to an
// account other than selfID. Empty values are not checked.
func (s *AuthService) ensureAvailable(ctx context.Context, selfID, email, username string) error {
	if email != "" {
		taken, err := s.takenBy(s.users.GetByEmail(ctx, email))
		if err != nil {
			return err
		}
		if taken != "" && taken != selfID {
			return apperror.Conflict("email", "email is already registered")
		}
	}
	if username != "" {
		taken, err := s.takenBy(s.users.GetByUsername(ctx, username))
		if err != nil {
			return err
		}
		if taken != "" && taken != selfID {
			return apperror.Conflict("username", "username is already taken")
		}
	}
	return nil
}

func (s *AuthService) takenBy(u *model.User, err error) (string, error) {
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("checking availability: %w", err)
	}
	return u.ID, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	sess := user.Session()
	token, err := s.tokens.Generate(sess)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Session: sess, Token: token}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

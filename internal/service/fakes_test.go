package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/repository"
	"github.com/sakif/flexfolio/internal/schema"
	"github.com/sakif/flexfolio/internal/validate"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the SQLite stores. Every record is copied in and
// out, so a test can never mutate stored state through a returned pointer.

type fakeUserRepo struct {
	users   []*model.User
	content *fakeContentRepo
	nextID  int
	getErr  error
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User, c *model.PortfolioContent) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.Conflict("email", "email is already registered")
		}
		if u.Username == user.Username {
			return apperror.Conflict("username", "username is already taken")
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = timeNow()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users = append(f.users, &stored)
	if f.content != nil {
		f.content.rows[user.ID] = c.Clone()
	}
	return nil
}

func (f *fakeUserRepo) find(match func(*model.User) bool, key string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", key)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id }, id)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email }, email)
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username }, username)
}

func (f *fakeUserRepo) GetByGitHubID(_ context.Context, id int64) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.GitHubID != nil && *u.GitHubID == id }, fmt.Sprint(id))
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	for i, u := range f.users {
		if u.ID == user.ID {
			user.UpdatedAt = timeNow()
			stored := *user
			f.users[i] = &stored
			return nil
		}
	}
	return apperror.NotFound("user", user.ID)
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return apperror.NotFound("user", id)
}

func (f *fakeUserRepo) LinkGitHub(_ context.Context, id string, githubID int64) error {
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == githubID && u.ID != id {
			return apperror.Conflict("github", "this GitHub account is linked to another user")
		}
	}
	for _, u := range f.users {
		if u.ID == id {
			u.GitHubID = &githubID
			return nil
		}
	}
	return apperror.NotFound("user", id)
}

type fakeContentRepo struct {
	rows    map[string]*model.PortfolioContent
	saves   int
	saveErr error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{rows: make(map[string]*model.PortfolioContent)}
}

func (f *fakeContentRepo) Get(_ context.Context, userID string) (*model.PortfolioContent, error) {
	c, ok := f.rows[userID]
	if !ok {
		return nil, apperror.NotFound("content", userID)
	}
	return c.Clone(), nil
}

func (f *fakeContentRepo) SaveSection(_ context.Context, userID string, section model.Section, c *model.PortfolioContent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	stored, ok := f.rows[userID]
	if !ok {
		f.rows[userID] = c.Clone()
		return nil
	}
	switch section {
	case model.SectionAbout:
		stored.About = c.About
	case model.SectionHero:
		stored.Hero = c.Clone().Hero
	case model.SectionSocial:
		stored.Social = c.Social
	}
	stored.UpdatedAt = c.UpdatedAt
	return nil
}

type fakeProjectRepo struct {
	projects []*model.Project
	nextID   int
}

func (f *fakeProjectRepo) Create(_ context.Context, p *model.Project) error {
	f.nextID++
	p.ID = fmt.Sprintf("project-%d", f.nextID)
	p.CreatedAt = timeNow()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	f.projects = append(f.projects, &stored)
	return nil
}

func (f *fakeProjectRepo) Get(_ context.Context, ownerID, id string) (*model.Project, error) {
	for _, p := range f.projects {
		if p.ID == id && p.OwnerID == ownerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("project", id)
}

func (f *fakeProjectRepo) List(_ context.Context, ownerID string, opts repository.ProjectListOptions) ([]model.Project, error) {
	out := []model.Project{}
	for _, p := range f.projects {
		if p.OwnerID != ownerID || (opts.PublishedOnly && p.Status != model.StatusPublished) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *model.Project) error {
	for i, stored := range f.projects {
		if stored.ID == p.ID && stored.OwnerID == p.OwnerID {
			p.UpdatedAt = timeNow()
			cp := *p
			f.projects[i] = &cp
			return nil
		}
	}
	return apperror.NotFound("project", p.ID)
}

func (f *fakeProjectRepo) Delete(_ context.Context, ownerID, id string) error {
	for i, p := range f.projects {
		if p.ID == id && p.OwnerID == ownerID {
			f.projects = append(f.projects[:i], f.projects[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("project", id)
}

type fakeSkillRepo struct {
	skills []*model.Skill
	nextID int
}

func (f *fakeSkillRepo) Create(_ context.Context, s *model.Skill) error {
	f.nextID++
	s.ID = fmt.Sprintf("skill-%d", f.nextID)
	s.CreatedAt = timeNow()
	s.UpdatedAt = s.CreatedAt
	stored := *s
	f.skills = append(f.skills, &stored)
	return nil
}

func (f *fakeSkillRepo) Get(_ context.Context, ownerID, id string) (*model.Skill, error) {
	for _, s := range f.skills {
		if s.ID == id && s.OwnerID == ownerID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("skill", id)
}

func (f *fakeSkillRepo) List(_ context.Context, ownerID string) ([]model.Skill, error) {
	out := []model.Skill{}
	for _, s := range f.skills {
		if s.OwnerID == ownerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSkillRepo) Update(_ context.Context, s *model.Skill) error {
	for i, stored := range f.skills {
		if stored.ID == s.ID && stored.OwnerID == s.OwnerID {
			s.UpdatedAt = timeNow()
			cp := *s
			f.skills[i] = &cp
			return nil
		}
	}
	return apperror.NotFound("skill", s.ID)
}

func (f *fakeSkillRepo) Delete(_ context.Context, ownerID, id string) error {
	for i, s := range f.skills {
		if s.ID == id && s.OwnerID == ownerID {
			f.skills = append(f.skills[:i], f.skills[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("skill", id)
}

type fakeMessageRepo struct {
	messages []*model.Message
	nextID   int
}

func (f *fakeMessageRepo) Create(_ context.Context, m *model.Message) error {
	f.nextID++
	m.ID = fmt.Sprintf("message-%d", f.nextID)
	m.CreatedAt = timeNow()
	m.IsRead = false
	stored := *m
	f.messages = append(f.messages, &stored)
	return nil
}

func (f *fakeMessageRepo) Get(_ context.Context, ownerID, id string) (*model.Message, error) {
	for _, m := range f.messages {
		if m.ID == id && m.OwnerID == ownerID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("message", id)
}

func (f *fakeMessageRepo) List(_ context.Context, ownerID string) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range f.messages {
		if m.OwnerID == ownerID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) SetRead(_ context.Context, ownerID, id string, isRead bool) error {
	for _, m := range f.messages {
		if m.ID == id && m.OwnerID == ownerID {
			m.IsRead = isRead
			return nil
		}
	}
	return apperror.NotFound("message", id)
}

func (f *fakeMessageRepo) Delete(_ context.Context, ownerID, id string) error {
	for i, m := range f.messages {
		if m.ID == id && m.OwnerID == ownerID {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("message", id)
}

func (f *fakeMessageRepo) CountUnread(_ context.Context, ownerID string) (int, error) {
	n := 0
	for _, m := range f.messages {
		if m.OwnerID == ownerID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) NewMessage(_ context.Context, owner *model.User, m *model.Message) error {
	f.sent = append(f.sent, owner.Username+":"+m.ID)
	return f.err
}

// =========================================================================
// TEST HARNESS
// =========================================================================

// env wires every service against the fakes, the way server.New wires them
// against SQLite.
type env struct {
	users    *fakeUserRepo
	content  *fakeContentRepo
	projects *fakeProjectRepo
	skills   *fakeSkillRepo
	messages *fakeMessageRepo
	notifier *fakeNotifier
	tokens   *auth.TokenService

	Auth      *AuthService
	Content   *ContentService
	Projects  *ProjectService
	Skills    *SkillService
	Messages  *MessageService
	Portfolio *PortfolioService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := validate.New()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	content := newFakeContentRepo()
	e := &env{
		users:    &fakeUserRepo{content: content},
		content:  content,
		projects: &fakeProjectRepo{},
		skills:   &fakeSkillRepo{},
		messages: &fakeMessageRepo{},
		notifier: &fakeNotifier{},
		tokens:   tokens,
	}

	e.Auth = NewAuthService(e.users, e.content, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), v, logger)
	e.Content = NewContentService(e.users, e.content, NewPatchDecoder(schema.MustLoad(), v), logger)
	e.Projects = NewProjectService(e.projects, v, logger)
	e.Skills = NewSkillService(e.skills, v, logger)
	e.Messages = NewMessageService(e.messages, e.users, e.notifier, v, logger)
	e.Portfolio = NewPortfolioService(e.users, e.Content, e.Projects, e.Skills)
	return e
}

// register signs up username with password "password1" and returns its id.
func (e *env) register(t *testing.T, name, username string) string {
	t.Helper()
	id, err := e.Auth.Register(context.Background(), model.RegisterInput{
		Name:     name,
		Email:    strings.ToLower(username) + "@example.com",
		Username: username,
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", username, err)
	}
	return id
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

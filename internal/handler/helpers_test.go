package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/demo"
	"github.com/sakif/flexfolio/internal/handler"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/notify"
	"github.com/sakif/flexfolio/internal/repository/sqlite"
	"github.com/sakif/flexfolio/internal/schema"
	"github.com/sakif/flexfolio/internal/service"
	"github.com/sakif/flexfolio/internal/validate"
)

const testSecret = "test-secret-at-least-16-chars"

type envOptions struct {
	presigner handler.ImagePresigner
	github    handler.GitHubAuthenticator
}

// testEnv is a router over real services and an in-memory database.
type testEnv struct {
	router http.Handler
	auth   *service.AuthService
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	schemas, err := schema.Load()
	require.NoError(t, err)

	v := validate.New()
	decoder := service.NewPatchDecoder(schemas, v)
	users, content := db.Users(), db.Content()

	authSvc := service.NewAuthService(users, content, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), v, logger)
	contentSvc := service.NewContentService(users, content, decoder, logger)
	projectSvc := service.NewProjectService(db.Projects(), v, logger)
	skillSvc := service.NewSkillService(db.Skills(), v, logger)
	messageSvc := service.NewMessageService(db.Messages(), users, notify.Nop{}, v, logger)
	portfolioSvc := service.NewPortfolioService(users, contentSvc, projectSvc, skillSvc)

	authH := handler.NewAuthHandler(authSvc, opts.github, time.Hour, false, logger)
	accountH := handler.NewAccountHandler(authSvc, time.Hour, false, logger)
	contentH := handler.NewContentHandler(contentSvc, logger)
	liveEdit := handler.NewEditHandler(contentSvc, logger)
	demoEdit := handler.NewEditHandler(demo.NewEditor(decoder), logger)
	projectH := handler.NewProjectHandler(projectSvc, logger)
	skillH := handler.NewSkillHandler(skillSvc, logger)
	messageH := handler.NewMessageHandler(messageSvc, logger)
	uploadH := handler.NewUploadHandler(opts.presigner, logger)
	portfolioH, err := handler.NewPortfolioHandler(portfolioSvc, logger)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/auth/register", authH.HandleRegister)
	r.Post("/auth/login", authH.HandleLogin)
	r.Post("/auth/logout", authH.HandleLogout)
	r.With(auth.OptionalAuth(authSvc)).Get("/auth/session", authH.HandleSession)
	r.Get("/auth/github/login", authH.HandleGitHubLogin)
	r.With(auth.OptionalAuth(authSvc)).Get("/auth/github/callback", authH.HandleGitHubCallback)

	r.Get("/content/{username}", contentH.HandlePublic)
	r.Get("/portfolio/{username}", portfolioH.HandleJSON)
	r.Get("/u/{username}", portfolioH.HandlePage)
	r.Post("/messages", messageH.HandleSend)
	r.Get("/demo", portfolioH.HandleDemoPage)
	r.Get("/demo/portfolio", portfolioH.HandleDemoJSON)
	r.Patch("/demo/content/{section}", demoEdit.HandlePatch)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(authSvc))
		r.Get("/api/content", contentH.HandleOwn)
		r.Patch("/content/{userId}/{section}", liveEdit.HandlePatch)
		r.Get("/projects", projectH.HandleList)
		r.Post("/projects", projectH.HandleCreate)
		r.Get("/projects/{id}", projectH.HandleGet)
		r.Put("/projects/{id}", projectH.HandleUpdate)
		r.Delete("/projects/{id}", projectH.HandleDelete)
		r.Get("/skills", skillH.HandleList)
		r.Post("/skills", skillH.HandleCreate)
		r.Get("/skills/{id}", skillH.HandleGet)
		r.Put("/skills/{id}", skillH.HandleUpdate)
		r.Delete("/skills/{id}", skillH.HandleDelete)
		r.Get("/messages", messageH.HandleList)
		r.Get("/messages/unread-count", messageH.HandleUnreadCount)
		r.Get("/messages/{id}", messageH.HandleGet)
		r.Put("/messages/{id}", messageH.HandleMarkRead)
		r.Delete("/messages/{id}", messageH.HandleDelete)
		r.Get("/account", accountH.HandleGet)
		r.Put("/account", accountH.HandleUpdate)
		r.Put("/account/password", accountH.HandlePassword)
		r.Put("/account/status", accountH.HandleStatus)
		r.Post("/uploads/profile-image", uploadH.HandleProfileImage)
	})

	return &testEnv{router: r, auth: authSvc}
}

// signIn registers username and returns its session cookie and user id.
func (e *testEnv) signIn(t *testing.T, username string) (*http.Cookie, string) {
	t.Helper()
	ctx := context.Background()
	id, err := e.auth.Register(ctx, model.RegisterInput{
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Email:    username + "@example.com",
		Username: username,
		Password: "password123",
	})
	require.NoError(t, err)

	res, err := e.auth.Login(ctx, username+"@example.com", "password123")
	require.NoError(t, err)
	return &http.Cookie{Name: auth.CookieName, Value: res.Token}, id
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	return nil
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

const stateCookie = "oauth_state"

// GitHubAuthenticator is the OAuth side of GitHub sign-in.
// *auth.GitHubProvider implements it.
type GitHubAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// AuthHandler serves registration, password login, logout, the session
// probe and the GitHub OAuth flow.
//
//   - HandleRegister        → POST /auth/register
//   - HandleLogin           → POST /auth/login
//   - HandleLogout          → POST /auth/logout
//   - HandleSession         → GET  /auth/session
//   - HandleGitHubLogin     → GET  /auth/github/login
//   - HandleGitHubCallback  → GET  /auth/github/callback
type AuthHandler struct {
	auth         *service.AuthService
	github       GitHubAuthenticator
	ttl          time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil when GitHub OAuth
// is not configured; its routes are then not mounted.
func NewAuthHandler(
	authService *service.AuthService,
	github GitHubAuthenticator,
	ttl time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		github:       github,
		ttl:          ttl,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Session *model.Session `json:"session"`
}

// HandleRegister creates an account. It does not sign the user in; the
// client follows up with a login.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in model.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := h.auth.Register(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"userId": id})
}

// HandleLogin checks credentials and sets the session cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, h.ttl, h.secureCookie)
	writeJSON(w, http.StatusOK, sessionResponse{Session: res.Session})
}

// HandleLogout drops the session cookie. It is a POST so a cross-site link
// cannot log anyone out.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.secureCookie)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleSession reports who is signed in, or {"user": null}. It runs behind
// OptionalAuth, whose verifier re-reads the user, so the data is current.
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.SessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": sess})
}

// HandleGitHubLogin redirects to GitHub's consent page. The random state is
// kept in a short-lived cookie and compared on the callback.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback finishes the OAuth flow. A signed-in owner gets the
// GitHub account linked; an anonymous visitor is signed in to the account
// already linked to it, if any.
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("github callback: state mismatch")
		writeError(w, h.logger, apperror.ValidationFailed("state", "invalid OAuth state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if denied := r.URL.Query().Get("error"); denied != "" {
		h.logger.Info("github callback: authorization denied", slog.String("error", denied))
		http.Redirect(w, r, "/login?github=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.logger, apperror.ValidationFailed("code", "missing OAuth code"))
		return
	}

	gh, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("github callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, "/login?github=failed", http.StatusSeeOther)
		return
	}

	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		if err := h.auth.LinkGitHub(r.Context(), userID, gh); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				http.Redirect(w, r, "/dashboard?github=taken", http.StatusSeeOther)
				return
			}
			writeError(w, h.logger, err)
			return
		}
		http.Redirect(w, r, "/dashboard?github=linked", http.StatusSeeOther)
		return
	}

	res, err := h.auth.LoginWithGitHub(r.Context(), gh)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			http.Redirect(w, r, "/login?github=unlinked", http.StatusSeeOther)
			return
		}
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, h.ttl, h.secureCookie)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

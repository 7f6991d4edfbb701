package auth

import (
	"context"
	"net/http"

	"github.com/sakif/flexfolio/internal/model"
)

// contextKey is an unexported type for context keys, so no other package can
// read or shadow the session stored here.
type contextKey string

const sessionKey contextKey = "session"

// Verifier turns a raw session token into the identity it names.
// A nil session with a nil error means the token is not (or no longer) valid.
//
// service.AuthService implements it by validating the JWT and re-reading the
// user, so renamed or deleted accounts are reflected immediately.
type Verifier interface {
	VerifySession(ctx context.Context, token string) (*model.Session, error)
}

// VerifySession lets a bare TokenService act as a Verifier. It trusts the
// claims without a user lookup.
func (s *TokenService) VerifySession(_ context.Context, token string) (*model.Session, error) {
	sess, err := s.Validate(token)
	if err != nil {
		return nil, nil
	}
	return sess, nil
}

// RequireAuth rejects requests without a valid session cookie with
// 401 Unauthorized. On success the Session is stored in the request context.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFromRequest(r, v)
			if sess == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// OptionalAuth attaches the session when a valid cookie is present but never
// blocks the request. Handlers check SessionFromContext to tell anonymous
// callers apart.
func OptionalAuth(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess := sessionFromRequest(r, v); sess != nil {
				r = r.WithContext(WithSession(r.Context(), sess))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext returns the caller's session, or (nil, false) for an
// anonymous request.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*model.Session)
	return sess, ok && sess != nil && sess.UserID != ""
}

// UserIDFromContext is a shortcut for handlers that only need the owner id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return sess.UserID, true
}

// sessionFromRequest reads the token cookie and asks v to resolve it.
// A missing cookie is simply an anonymous request.
func sessionFromRequest(r *http.Request, v Verifier) *model.Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := v.VerifySession(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

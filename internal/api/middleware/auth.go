package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/users"
)

// Bound on how much of a request body is read while peeking for a token.
const maxTokenPeek = 1 << 20

type contextKey string

const userContextKey contextKey = "user"

// UserResolver validates a session token and loads the user it names.
type UserResolver interface {
	ResolveToken(ctx context.Context, token string) (users.User, error)
}

func UserFrom(ctx context.Context) (users.User, bool) {
	user, ok := ctx.Value(userContextKey).(users.User)
	return user, ok
}

func WithUser(ctx context.Context, user users.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// RequireUser rejects requests that do not carry a valid session token and
// stores the resolved user on the request context.
func RequireUser(resolver UserResolver) func(http.Handler) http.Handler {
	return requireUser(resolver, false)
}

// RequireDirector additionally requires the resolved user to hold the
// director role.
func RequireDirector(resolver UserResolver) func(http.Handler) http.Handler {
	return requireUser(resolver, true)
}

func requireUser(resolver UserResolver, directorOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := tokenFromRequest(r)
			if err != nil {
				respond.Write(w, authFailure(err))
				return
			}

			user, err := resolver.ResolveToken(r.Context(), token)
			if err != nil {
				respond.Write(w, authFailure(err))
				return
			}

			if directorOnly && !user.IsDirector() {
				respond.Write(w, respond.Error(http.StatusForbidden, "Permission denied"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func authFailure(err error) respond.Envelope {
	switch {
	case errors.Is(err, users.ErrNotFound):
		return respond.Error(http.StatusNotFound, "User email not found.")
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return respond.Error(http.StatusBadRequest, "Invalid or missing token.")
	default:
		return respond.Error(http.StatusInternalServerError, "Internal server error.")
	}
}

// tokenFromRequest looks for a session token in the Authorization header,
// then the token query parameter, then a token field in the JSON body.
func tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return auth.TokenFromHeader(header)
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return tokenFromBody(r)
}

// tokenFromBody peeks at the JSON body for a token field, restoring the body
// so handlers can decode it again.
func tokenFromBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", auth.ErrMissingToken
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxTokenPeek))
	if err != nil {
		return "", auth.ErrMissingToken
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", auth.ErrMissingToken
	}
	if strings.TrimSpace(payload.Token) == "" {
		return "", auth.ErrMissingToken
	}
	return payload.Token, nil
}

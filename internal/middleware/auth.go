package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/models"
	"github.com/AnshRaj112/travel-journal-backend/pkg/utils"
)

// Session is the authenticated caller of a request.
type Session struct {
	User  *models.User
	Token string
}

type sessionKey struct{}

// Resolver turns a bearer token into the user it was issued for.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// SessionFromContext returns the session attached by RequireAuth.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok && s != nil && s.User != nil
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// RequireAuth rejects requests without a valid bearer token with 401. When
// allowQueryToken is set the token may come from ?token= instead, for
// websocket handshakes where browsers cannot set headers.
func RequireAuth(resolver Resolver, log *zap.Logger, allowQueryToken bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r.Header.Get("Authorization"))
			if token == "" && allowQueryToken {
				token = strings.TrimSpace(r.URL.Query().Get("token"))
			}
			if token == "" {
				unauthorized(w, "No authorization header")
				return
			}

			user, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				var authErr *utils.AuthError
				if !errors.As(err, &authErr) {
					log.Error("failed to resolve session", zap.Error(err))
				}
				unauthorized(w, "Please authenticate")
				return
			}

			ctx := WithSession(r.Context(), &Session{User: user, Token: token})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearerToken returns the token of a "Bearer <token>" header value.
func ExtractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

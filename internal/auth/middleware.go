package auth

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
)

type ctxKey struct{}

// Verifier validates a bearer token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFromContext returns the claims attached by RequireAuthentication.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < len("bearer ") || !strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[len("bearer "):])
}

// RequireAuthentication rejects requests without a valid bearer token and
// attaches the decoded claims to the request context otherwise.
func RequireAuthentication(v Verifier, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				apperr.Write(w, logger, apperr.Unauthorized("Authentication token required."))
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				logger.Debugw("token verification failed", "err", err, "path", r.URL.Path)
				apperr.Write(w, logger, apperr.Unauthorized("Invalid or expired token."))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits only requests whose authenticated role is in roles.
// It depends on claims set by RequireAuthentication.
func RequireRole(logger *zap.SugaredLogger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role == "" {
				apperr.Write(w, logger, apperr.Forbidden("Access denied. User role not found."))
				return
			}
			if !slices.Contains(roles, claims.Role) {
				apperr.Write(w, logger, apperr.Forbidden("Access denied. Requires one of: "+strings.Join(roles, ", ")+" roles."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Protect wraps h with authentication followed by a role check.
func Protect(h http.Handler, v Verifier, logger *zap.SugaredLogger, roles ...string) http.Handler {
	return RequireAuthentication(v, logger)(RequireRole(logger, roles...)(h))
}

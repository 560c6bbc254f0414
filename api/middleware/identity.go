package middleware

import (
	"net/http"
	"strings"

	"github.com/kkarhua/fullrest-backend/internal/authz"
	"github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

// skipRule matches by prefix; method-bound rules match the path exactly.
type skipRule struct {
	method string
	prefix string
}

var identitySkipList = []skipRule{
	{prefix: "/api/auth/login"},
	{prefix: "/api/auth/refresh"},
	{prefix: "/api/auth/logout"},
	{prefix: "/api/auth/validate"},
	{method: http.MethodPost, prefix: "/api/usuarios"},
	{prefix: "/swagger-ui"},
	{prefix: "/v3/api-docs"},
	{prefix: "/uploads/"},
}

func skipIdentity(r *http.Request) bool {
	for _, rule := range identitySkipList {
		if rule.method != "" {
			if rule.method == r.Method && strings.TrimRight(r.URL.Path, "/") == rule.prefix {
				return true
			}
			continue
		}
		if strings.HasPrefix(r.URL.Path, rule.prefix) {
			return true
		}
	}
	return false
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[7:])
}

type accessValidator interface {
	Parse(token string) (*auth.Claims, error)
	ValidateAccess(token, expectedSubject string) (bool, error)
}

// Identity attaches the bearer token's caller to the request context. It never
// rejects a request; Authorize decides what anonymous callers may reach.
func Identity(codec accessValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipIdentity(r) {
				next.ServeHTTP(w, r)
				return
			}
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := codec.Parse(token)
			if err != nil {
				if logg != nil {
					logg.Warn(ctx, "auth.identity.parse_failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			if IdentityFromContext(ctx) == nil {
				ok, err := codec.ValidateAccess(token, claims.Subject)
				if err == nil && ok {
					ctx = WithIdentity(ctx, &authz.Identity{
						Email:  claims.Subject,
						Role:   claims.Role,
						UserID: claims.UserID,
					})
					if logg != nil {
						ctx = logg.WithUserID(ctx, claims.UserID)
						ctx = logg.WithActorRole(ctx, claims.Role.String())
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

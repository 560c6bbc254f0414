package middleware

import (
	"net/http"

	"github.com/kkarhua/fullrest-backend/api/responses"
	"github.com/kkarhua/fullrest-backend/internal/authz"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

// Authorize enforces policy against the identity attached by Identity.
func Authorize(policy *authz.Policy, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch policy.Decide(r.Method, r.URL.Path, IdentityFromContext(r.Context())) {
			case authz.Allow:
				next.ServeHTTP(w, r)
			case authz.Forbidden:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient role"))
			default:
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			}
		})
	}
}

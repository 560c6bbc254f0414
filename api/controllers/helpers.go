package controllers

import (
	"net/http"

	"github.com/kkarhua/fullrest-backend/api/middleware"
	"github.com/kkarhua/fullrest-backend/api/responses"
	"github.com/kkarhua/fullrest-backend/internal/authz"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// requireIdentity returns the caller or writes a 401.
func requireIdentity(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*authz.Identity, bool) {
	id := middleware.IdentityFromContext(r.Context())
	if id == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	return id, true
}

type messageResponse struct {
	Message string `json:"message"`
}

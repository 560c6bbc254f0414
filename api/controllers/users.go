package controllers

import (
	"net/http"

	"github.com/kkarhua/fullrest-backend/api/middleware"
	"github.com/kkarhua/fullrest-backend/api/responses"
	"github.com/kkarhua/fullrest-backend/api/validators"
	"github.com/kkarhua/fullrest-backend/internal/auth"
	"github.com/kkarhua/fullrest-backend/internal/users"
	pkgauth "github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
)

const registeredMessage = "user registered successfully"

type tokenIssuer interface {
	IssueFor(user *models.User, message string) (*auth.LoginResponse, error)
}

type accessParser interface {
	Parse(token string) (*pkgauth.Claims, error)
	ValidateAccess(token, expectedSubject string) (bool, error)
}

// callerIsSuperAdmin checks the bearer token directly because Identity does
// not run on the registration route.
func callerIsSuperAdmin(r *http.Request, codec accessParser) bool {
	token := middleware.BearerToken(r)
	if codec == nil || token == "" {
		return false
	}
	claims, err := codec.Parse(token)
	if err != nil || claims.Role != enums.RoleSuperAdmin {
		return false
	}
	ok, err := codec.ValidateAccess(token, claims.Subject)
	return err == nil && ok
}

func UsersList(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "user")
			return
		}
		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func UsersGet(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "user")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

// UsersRegister creates a cliente account. A super-admin bearer may set rol
// and estado; anyone else asking for them gets a 403. With ?autoLogin=true the
// response carries a token pair in the flat auth shape.
func UsersRegister(svc users.Service, issuer tokenIssuer, codec accessParser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "user")
			return
		}

		var body users.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Elevated() && !callerIsSuperAdmin(r, codec) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "only a super-admin may set rol or estado"))
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if validators.ParseQueryBool(r, "autoLogin") && issuer != nil {
			result, err := issuer.IssueFor(user, registeredMessage)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteJSON(w, http.StatusCreated, result)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, users.FromModel(user))
	}
}

func UsersUpdate(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "user")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body users.UpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func UsersDelete(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "user")
			return
		}
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "user deleted", "usuarioId": id})
	}
}

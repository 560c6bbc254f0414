// Package authz maps request method and path to the access a caller needs.
package authz

import (
	"net/http"
	"strings"

	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// Identity is the authenticated caller attached to a request.
type Identity struct {
	Email  string
	Role   enums.Role
	UserID int64
}

// CanAccessOwned reports whether the caller may act on a record owned by
// ownerID. Staff roles may act on any record.
func (id *Identity) CanAccessOwned(ownerID int64) bool {
	if id == nil {
		return false
	}
	return id.Role.IsStaff() || id.UserID == ownerID
}

// Decision is the outcome of evaluating a request against a Policy.
type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	}
	return "unknown"
}

type accessKind int

const (
	accessPublic accessKind = iota
	accessAuthenticated
	accessRoles
)

// Access describes who may reach a route.
type Access struct {
	kind  accessKind
	roles []enums.Role
}

func Public() Access        { return Access{kind: accessPublic} }
func Authenticated() Access { return Access{kind: accessAuthenticated} }

// Roles requires an authenticated caller holding one of roles.
func Roles(roles ...enums.Role) Access {
	return Access{kind: accessRoles, roles: roles}
}

func (a Access) decide(id *Identity) Decision {
	switch a.kind {
	case accessPublic:
		return Allow
	case accessAuthenticated:
		if id == nil {
			return Unauthenticated
		}
		return Allow
	default:
		if id == nil {
			return Unauthenticated
		}
		for _, role := range a.roles {
			if id.Role == role {
				return Allow
			}
		}
		return Forbidden
	}
}

// Rule matches a request when the method is listed (or Methods is empty) and
// any pattern matches the path. A pattern ending in "/**" matches the prefix
// itself and everything below it; other patterns match exactly.
type Rule struct {
	Methods  []string
	Patterns []string
	Access   Access
}

func (r Rule) matches(method, path string) bool {
	if len(r.Methods) > 0 {
		found := false
		for _, m := range r.Methods {
			if strings.EqualFold(m, method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, pattern := range r.Patterns {
		if matchPattern(pattern, path) {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
		if prefix == "" {
			return true
		}
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}
	return path == pattern
}

// Policy is an ordered rule table; the first matching rule wins. Requests that
// match nothing are denied as Unauthenticated.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Decide evaluates method and path for the given caller, which may be nil.
// OPTIONS requests are always allowed.
func (p *Policy) Decide(method, path string, id *Identity) Decision {
	if method == http.MethodOptions {
		return Allow
	}
	path = normalizePath(path)
	for _, rule := range p.rules {
		if rule.matches(method, path) {
			return rule.Access.decide(id)
		}
	}
	return Unauthenticated
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

var (
	writeMethods = []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	staff        = Roles(enums.RoleVendor, enums.RoleSuperAdmin)
)

// DefaultPolicy is the route table for the API.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Patterns: []string{"/api/auth/**"}, Access: Public()},
		Rule{Methods: []string{http.MethodPost}, Patterns: []string{"/api/usuarios"}, Access: Public()},
		Rule{Methods: []string{http.MethodGet}, Patterns: []string{"/api/productos/**"}, Access: Public()},
		Rule{Methods: []string{http.MethodGet}, Patterns: []string{"/api/categorias/**"}, Access: Public()},
		Rule{Methods: []string{http.MethodGet}, Patterns: []string{"/api/imagenes/**", "/uploads/**"}, Access: Public()},
		Rule{Methods: []string{http.MethodGet}, Patterns: []string{"/health/**", "/metrics"}, Access: Public()},
		Rule{Methods: writeMethods, Patterns: []string{"/api/productos/**", "/api/categorias/**", "/api/imagenes/**"}, Access: staff},
		Rule{Patterns: []string{"/api/stock/**"}, Access: staff},
		Rule{
			Methods:  []string{http.MethodGet, http.MethodPut, http.MethodPatch, http.MethodDelete},
			Patterns: []string{"/api/usuarios/**"},
			Access:   Roles(enums.RoleSuperAdmin),
		},
		Rule{Patterns: []string{"/**"}, Access: Authenticated()},
	)
}

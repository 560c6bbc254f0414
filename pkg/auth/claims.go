package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// TokenTypeRefresh marks refresh tokens. Access tokens carry no type claim.
const TokenTypeRefresh = "refresh"

// Claims is the JWT body shared by access and refresh tokens.
type Claims struct {
	Role   enums.Role `json:"rol,omitempty"`
	UserID int64      `json:"userId,omitempty"`
	Type   string     `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// IsRefresh reports whether the claims belong to a refresh token.
func (c *Claims) IsRefresh() bool {
	return c != nil && c.Type == TokenTypeRefresh
}

package auth

import (
	"github.com/kkarhua/fullrest-backend/internal/users"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// TokenTypeBearer is the scheme advertised in token responses.
const TokenTypeBearer = "Bearer"

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login and on auto-login sign-up.
type LoginResponse struct {
	Message      string         `json:"message"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	TokenType    string         `json:"tokenType"`
	ExpiresIn    int64          `json:"expiresIn"`
	User         *users.UserDTO `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// ValidateResponse describes a verified access token. RemainingTime is in
// milliseconds.
type ValidateResponse struct {
	Valid         bool       `json:"valid"`
	Email         string     `json:"email"`
	Role          enums.Role `json:"rol"`
	UserID        int64      `json:"userId"`
	RemainingTime int64      `json:"remainingTime"`
}

type ValidateAdminRequest struct {
	UserID int64 `json:"userId"`
}

type ValidateAdminResponse struct {
	UserID  int64      `json:"userId"`
	IsAdmin bool       `json:"isAdmin"`
	Role    enums.Role `json:"rol"`
}

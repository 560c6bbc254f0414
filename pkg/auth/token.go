package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// MinSecretBytes is the shortest HMAC key accepted for HS256.
const MinSecretBytes = 32

var jwtSigningMethod = jwt.SigningMethodHS256

var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenExpired          = errors.New("token expired")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenUnsupported      = errors.New("token unsupported")
)

// Codec signs and verifies session tokens with a process-wide HMAC key.
type Codec struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewCodec validates the JWT configuration and builds an immutable codec.
func NewCodec(cfg config.JWTConfig) (*Codec, error) {
	if len(cfg.Secret) < MinSecretBytes {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes", MinSecretBytes)
	}
	if cfg.AccessTTL <= 0 {
		return nil, fmt.Errorf("jwt access ttl must be positive")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("jwt refresh ttl must be positive")
	}
	return &Codec{
		key:        []byte(cfg.Secret),
		issuer:     strings.TrimSpace(cfg.Issuer),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the codec that reads time from now.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	clone := *c
	clone.now = now
	return &clone
}

func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

func (c *Codec) RefreshTTL() time.Duration {
	return c.refreshTTL
}

// IssueAccess mints an access token carrying the subject, role and user id.
func (c *Codec) IssueAccess(subject string, role enums.Role, userID int64, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("token subject is required")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role %q", role)
	}
	claims := Claims{
		Role:             role,
		UserID:           userID,
		RegisteredClaims: c.registered(subject, now, c.accessTTL),
	}
	return c.sign(claims)
}

// IssueRefresh mints a refresh token. It carries no role or user id.
func (c *Codec) IssueRefresh(subject string, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("token subject is required")
	}
	claims := Claims{
		Type:             TokenTypeRefresh,
		RegisteredClaims: c.registered(subject, now, c.refreshTTL),
	}
	return c.sign(claims)
}

// Parse verifies the signature and expiry and returns the typed claims.
// Failures wrap one of the ErrToken* sentinels.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	return c.parse(tokenString, true)
}

// ValidateAccess reports whether token is an unexpired access token for
// expectedSubject. Structural failures are returned as errors.
func (c *Codec) ValidateAccess(tokenString, expectedSubject string) (bool, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return false, err
	}
	if claims.IsRefresh() {
		return false, nil
	}
	return claims.Subject == expectedSubject, nil
}

// ValidateRefresh reports whether token is an unexpired refresh token. It
// never returns an error.
func (c *Codec) ValidateRefresh(tokenString string) bool {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return false
	}
	return claims.IsRefresh()
}

// RemainingValidity returns exp minus now. Expired tokens yield a negative
// duration; the signature must still verify.
func (c *Codec) RemainingValidity(tokenString string) (time.Duration, error) {
	claims, err := c.parse(tokenString, false)
	if err != nil {
		return 0, err
	}
	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("%w: missing exp", ErrTokenMalformed)
	}
	return claims.ExpiresAt.Time.Sub(c.now()), nil
}

func (c *Codec) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (c *Codec) sign(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

func (c *Codec) parse(tokenString string, validateClaims bool) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(c.now)}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	if validateClaims {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(
		strings.TrimSpace(tokenString),
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("%w: signing method %v", ErrTokenUnsupported, token.Header["alg"])
			}
			return c.key, nil
		},
	)
	if err != nil {
		return nil, classify(err)
	}
	// WithoutClaimsValidation skips WithIssuer as well
	if !validateClaims && c.issuer != "" && claims.Issuer != c.issuer {
		return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, jwt.ErrTokenInvalidIssuer)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrTokenUnsupported):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenUnsupported, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

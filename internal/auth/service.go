package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kkarhua/fullrest-backend/internal/users"
	pkgauth "github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/metrics"
	"gorm.io/gorm"
)

const loginSuccessMessage = "login successful"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	Validate(ctx context.Context, token string) (*ValidateResponse, error)
	ValidateAdmin(ctx context.Context, userID int64) (*ValidateAdminResponse, error)
	IssueFor(user *models.User, message string) (*LoginResponse, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

type passwordVerifier interface {
	Verify(plaintext, hash string) bool
}

type tokenCodec interface {
	IssueAccess(subject string, role enums.Role, userID int64, now time.Time) (string, error)
	IssueRefresh(subject string, now time.Time) (string, error)
	Parse(token string) (*pkgauth.Claims, error)
	ValidateAccess(token, expectedSubject string) (bool, error)
	ValidateRefresh(token string) bool
	RemainingValidity(token string) (time.Duration, error)
	AccessTTL() time.Duration
}

type loginRecorder interface {
	IncLogin(outcome string)
	IncRefresh(ok bool)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo userRepository
	Hasher   passwordVerifier
	Codec    tokenCodec
	Metrics  loginRecorder
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	users   userRepository
	hasher  passwordVerifier
	codec   tokenCodec
	metrics loginRecorder
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the authentication service.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Codec == nil {
		return nil, fmt.Errorf("token codec is required")
	}
	svc := &service{
		users:   params.UserRepo,
		hasher:  params.Hasher,
		codec:   params.Codec,
		metrics: params.Metrics,
		logg:    params.Logger,
		now:     params.Now,
	}
	if svc.metrics == nil {
		svc.metrics = (*metrics.AuthMetrics)(nil)
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

// Login checks credentials and issues an access/refresh pair. Unknown email and
// wrong password produce the same error.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		s.metrics.IncLogin(metrics.LoginMissing)
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, ErrMissingCredentials, ErrMissingCredentials.Error())
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(ctx, "auth.login.lookup_failed", err)
		}
		s.metrics.IncLogin(metrics.LoginInvalid)
		return nil, invalidCredentials()
	}

	if !user.IsActive() {
		s.metrics.IncLogin(metrics.LoginInactive)
		return nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, ErrInactiveAccount, ErrInactiveAccount.Error())
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		s.metrics.IncLogin(metrics.LoginInvalid)
		return nil, invalidCredentials()
	}

	resp, err := s.IssueFor(user, loginSuccessMessage)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, err
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	ctx = s.logg.WithUserID(ctx, user.ID)
	s.logg.Info(ctx, "auth.login.success")
	return resp, nil
}

// IssueFor mints a token pair for user.
func (s *service) IssueFor(user *models.User, message string) (*LoginResponse, error) {
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user is required")
	}
	now := s.now()
	access, err := s.codec.IssueAccess(user.Email, user.Role, user.ID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.codec.IssueRefresh(user.Email, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	return &LoginResponse{
		Message:      message,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
		User:         users.FromModel(user),
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. Every
// failure collapses to ErrRefreshInvalid.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refresh token is required")
	}

	resp, err := s.refresh(ctx, token)
	s.metrics.IncRefresh(err == nil)
	if err != nil {
		s.logg.Warn(ctx, "auth.refresh.rejected", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrRefreshInvalid, ErrRefreshInvalid.Error())
	}
	return resp, nil
}

func (s *service) refresh(ctx context.Context, token string) (*RefreshResponse, error) {
	if !s.codec.ValidateRefresh(token) {
		return nil, errors.New("refresh token rejected by codec")
	}
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("load refresh subject: %w", err)
	}
	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}
	access, err := s.codec.IssueAccess(user.Email, user.Role, user.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: access,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(s.codec.AccessTTL().Seconds()),
	}, nil
}

// Validate reports the identity carried by an access token.
func (s *service) Validate(ctx context.Context, token string) (*ValidateResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bearer token is required")
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, ErrTokenInvalid.Error())
	}
	ok, err := s.codec.ValidateAccess(token, claims.Subject)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, ErrTokenInvalid.Error())
	}
	if !ok {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrTokenInvalid, ErrTokenInvalid.Error())
	}
	remaining, err := s.codec.RemainingValidity(token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, ErrTokenInvalid.Error())
	}

	return &ValidateResponse{
		Valid:         true,
		Email:         claims.Subject,
		Role:          claims.Role,
		UserID:        claims.UserID,
		RemainingTime: remaining.Milliseconds(),
	}, nil
}

// ValidateAdmin reports whether userID belongs to a super-admin.
func (s *service) ValidateAdmin(ctx context.Context, userID int64) (*ValidateAdminResponse, error) {
	if userID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, ErrUserNotFound, ErrUserNotFound.Error())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return &ValidateAdminResponse{
		UserID:  user.ID,
		IsAdmin: user.Role == enums.RoleSuperAdmin,
		Role:    user.Role,
	}, nil
}

func invalidCredentials() error {
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, ErrInvalidCredentials, ErrInvalidCredentials.Error())
}

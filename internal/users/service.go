package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kkarhua/fullrest-backend/pkg/db"
	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	pkgerrors "github.com/kkarhua/fullrest-backend/pkg/errors"
	"github.com/kkarhua/fullrest-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	msgUserNotFound = "user not found"
	msgEmailTaken   = "email already registered"
)

// Service is the user management surface used by the controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	List(ctx context.Context) ([]UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	Update(ctx context.Context, id int64, req UpdateRequest) (*UserDTO, error)
	Delete(ctx context.Context, id int64) error
}

type repository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id int64) error
}

type passwordHasher interface {
	Hash(plaintext string) (string, error)
}

type service struct {
	repo   repository
	hasher passwordHasher
}

// NewService builds the user service.
func NewService(repo repository, hasher passwordHasher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	return &service{repo: repo, hasher: hasher}, nil
}

// Register creates an account, by default an active cliente. Callers decide
// whether req may carry another role or status. The password is always hashed.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	var err error
	role, status := enums.RoleCustomer, enums.UserStatusActive
	if req.Role != nil {
		if role, err = enums.ParseRole(*req.Role); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
	}
	if req.Status != nil {
		if status, err = enums.ParseUserStatus(*req.Status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgEmailTaken)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}
	return user, nil
}

func (s *service) List(ctx context.Context) ([]UserDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// Update applies the non-nil fields of req. A password is re-hashed only when
// it is non-empty and not already a bcrypt hash; an empty value keeps the
// stored hash.
func (s *service) Update(ctx context.Context, id int64, req UpdateRequest) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if email != user.Email {
			if err := s.ensureEmailFree(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Role != nil {
		role, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role")
		}
		user.Role = role
	}
	if req.Status != nil {
		status, err := enums.ParseUserStatus(*req.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		user.Status = status
	}
	if req.Password != nil && *req.Password != "" {
		switch {
		case security.LooksHashed(*req.Password):
			user.PasswordHash = *req.Password
		default:
			if err := security.ValidatePasswordStrength(*req.Password); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
			}
			hash, err := s.hasher.Hash(*req.Password)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
			}
			user.PasswordHash = hash
		}
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgEmailTaken)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, msgEmailTaken)
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}
}

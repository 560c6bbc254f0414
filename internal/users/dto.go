package users

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/db/models"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// UserDTO is the transport shape that omits the password hash.
type UserDTO struct {
	ID        int64            `json:"id"`
	Name      string           `json:"nombre"`
	Email     string           `json:"email"`
	Role      enums.Role       `json:"rol"`
	Status    enums.UserStatus `json:"estado"`
	CreatedAt time.Time        `json:"fechaCreacion"`
}

// RegisterRequest is the sign-up payload. Role and Status are only honoured
// for super-admin callers; see Elevated.
type RegisterRequest struct {
	Name     string  `json:"nombre" validate:"required,min=3,max=100"`
	Email    string  `json:"email" validate:"required,email,max=150"`
	Password string  `json:"contrasena" validate:"required,password"`
	Role     *string `json:"rol,omitempty" validate:"omitempty,oneof=cliente vendedor super-admin"`
	Status   *string `json:"estado,omitempty" validate:"omitempty,oneof=activo inactivo"`
}

// Elevated reports whether the request asks for anything other than an
// active cliente account.
func (r RegisterRequest) Elevated() bool {
	if r.Role != nil && *r.Role != string(enums.RoleCustomer) {
		return true
	}
	return r.Status != nil && *r.Status != string(enums.UserStatusActive)
}

// UpdateRequest is a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Name     *string `json:"nombre,omitempty" validate:"omitempty,min=3,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=150"`
	Password *string `json:"contrasena,omitempty"`
	Role     *string `json:"rol,omitempty" validate:"omitempty,oneof=cliente vendedor super-admin"`
	Status   *string `json:"estado,omitempty" validate:"omitempty,oneof=activo inactivo"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Role         enums.Role
	Status       enums.UserStatus
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

// ToModel applies the record defaults: role cliente, status activo.
func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	status := c.Status
	if status == "" {
		status = enums.UserStatusActive
	}
	return &models.User{
		Name:         c.Name,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         role,
		Status:       status,
	}
}

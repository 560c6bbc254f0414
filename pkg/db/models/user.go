package models

import (
	"time"

	"github.com/kkarhua/fullrest-backend/pkg/enums"
)

// User is the identity record used for authentication.
type User struct {
	ID           int64            `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string           `gorm:"column:nombre;size:100;not null"`
	Email        string           `gorm:"column:email;size:150;not null;uniqueIndex"`
	PasswordHash string           `gorm:"column:contrasena;not null"`
	Role         enums.Role       `gorm:"column:rol;size:20;not null"`
	Status       enums.UserStatus `gorm:"column:estado;size:20;not null"`
	CreatedAt    time.Time        `gorm:"column:fecha_creacion;autoCreateTime"`
}

func (User) TableName() string { return "usuarios" }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u != nil && u.Status == enums.UserStatusActive
}

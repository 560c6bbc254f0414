package enums

import "fmt"

// UserStatus tracks whether an account may authenticate.
type UserStatus string

const (
	UserStatusActive   UserStatus = "activo"
	UserStatusInactive UserStatus = "inactivo"
)

var validUserStatuses = []UserStatus{
	UserStatusActive,
	UserStatusInactive,
}

func (s UserStatus) String() string {
	return string(s)
}

func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}

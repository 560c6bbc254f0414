package enums

import "fmt"

// Role is the account-level permission role stored on a user.
type Role string

const (
	RoleCustomer   Role = "cliente"
	RoleVendor     Role = "vendedor"
	RoleSuperAdmin Role = "super-admin"
)

var validRoles = []Role{
	RoleCustomer,
	RoleVendor,
	RoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role may manage the catalog.
func (r Role) IsStaff() bool {
	return r == RoleVendor || r == RoleSuperAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}

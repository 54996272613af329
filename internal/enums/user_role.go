package enums

import "fmt"

// UserRole is the closed set of account roles.
type UserRole string

const (
	UserRolePatient      UserRole = "patient"
	UserRoleProfessional UserRole = "professional"
	UserRoleAdmin        UserRole = "admin"
)

var validUserRoles = []UserRole{
	UserRolePatient,
	UserRoleProfessional,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// UserRoles lists the allowed roles.
func UserRoles() []UserRole {
	out := make([]UserRole, len(validUserRoles))
	copy(out, validUserRoles)
	return out
}

package models

import "fmt"

// Role is the closed set of portal roles. Authorization decisions switch
// exhaustively over this type rather than comparing raw strings.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RolePatient   Role = "PATIENT"
	RoleCaregiver Role = "CAREGIVER"
	RoleClinician Role = "CLINICIAN"
)

// ParseRole validates a raw role string
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RolePatient, RoleCaregiver, RoleClinician:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

package models

import "strings"

// Role is the single column that gates routes, navigation and project visibility.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleContractor Role = "contractor"
	RoleClient     Role = "client"
)

// DefaultRole is assigned to every new profile.
const DefaultRole = RoleClient

func AllRoles() []Role {
	return []Role{RoleAdmin, RoleContractor, RoleClient}
}

func (role Role) Valid() bool {
	switch role {
	case RoleAdmin, RoleContractor, RoleClient:
		return true
	default:
		return false
	}
}

func (role Role) String() string {
	return string(role)
}

// Label returns the capitalized role name shown in the account menu.
func (role Role) Label() string {
	if !role.Valid() {
		return "Unknown"
	}
	value := string(role)
	return strings.ToUpper(value[:1]) + value[1:]
}

func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// ContainsRole reports whether role is one of allowed.
func ContainsRole(allowed []Role, role Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

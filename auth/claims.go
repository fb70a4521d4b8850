package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// RolePrefix marks a role as an authority for downstream authorization checks
const RolePrefix = "ROLE_"

// DefaultRole is granted to every authenticated user
const DefaultRole = "USER"

// Claims represents the claims carried by an issued token
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Principal is the verified identity attached to a request
type Principal struct {
	Subject string   `json:"subject"`
	Roles   []string `json:"roles"`
}

// HasRole reports whether the principal holds the role.
// The comparison accepts the role with or without the ROLE_ prefix.
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	want := withRolePrefix(role)
	for _, r := range p.Roles {
		if withRolePrefix(r) == want {
			return true
		}
	}
	return false
}

func withRolePrefix(role string) string {
	if strings.HasPrefix(role, RolePrefix) {
		return role
	}
	return RolePrefix + role
}

func stripRolePrefix(role string) string {
	return strings.TrimPrefix(role, RolePrefix)
}

package internal

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// NormalizeRole lower-cases r and falls back to employee when it is empty.
func NormalizeRole(r string) Role {
	r = strings.ToLower(strings.TrimSpace(r))
	if r == "" {
		return RoleEmployee
	}
	return Role(r)
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

func (r Role) String() string {
	return string(r)
}

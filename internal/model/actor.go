package model

import "strings"

// Role controls which rows of the dataset an actor may see.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleViewAll Role = "view_all"
	RoleChamber Role = "camara"
)

// ParseRole maps a role name to a known Role. The second return is false for
// unknown names.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleViewAll, "view-all", "viewall":
		return RoleViewAll, true
	case RoleChamber, "chamber", "cámara":
		return RoleChamber, true
	}
	return "", false
}

// Unrestricted reports whether the role sees every chamber.
func (r Role) Unrestricted() bool {
	return r == RoleAdmin || r == RoleViewAll
}

// Actor describes who is looking at the dashboard.
type Actor struct {
	Role        Role   `json:"role"`
	ChamberName string `json:"chamber_name,omitempty"`
}

package entity

// Role is the enumerated authority level of a user.
type Role string

const (
	RoleTeamMember     Role = "TEAM_MEMBER"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleAdmin          Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeamMember, RoleProjectManager, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

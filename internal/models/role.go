package models

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	}
	return false
}

// IsStaff reports whether the role may use the administrative workflows.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleModerator
}

package models

// Role identifies a principal kind. The set is closed: every role carried in
// a token must resolve to exactly one of these constants.
type Role string

const (
	RoleMainAdmin Role = "main-admin"
	RoleSubAdmin  Role = "sub-admin"
	RoleInstitute Role = "institute"
	RoleTeacher   Role = "teacher"
	RoleStudent   Role = "student"
)

// AllRoles lists every recognized principal kind.
var AllRoles = []Role{RoleMainAdmin, RoleSubAdmin, RoleInstitute, RoleTeacher, RoleStudent}

func (r Role) Valid() bool {
	switch r {
	case RoleMainAdmin, RoleSubAdmin, RoleInstitute, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleMainAdmin || r == RoleSubAdmin
}

func (r Role) String() string {
	return string(r)
}

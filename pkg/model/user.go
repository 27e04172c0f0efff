package model

import "fmt"

// Role is the portal role a user signs in with.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q (want student, teacher or admin)", s)
}

// CurrentUser is the user snapshot returned at login. It is never refreshed
// from the server except by a fresh login; any field other than Role and
// Username may be empty.
type CurrentUser struct {
	ID           string `json:"id,omitempty"`
	Role         Role   `json:"role"`
	FullName     string `json:"full_name,omitempty"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	Department   string `json:"department,omitempty"`
	Semester     int    `json:"semester,omitempty"`
	ProfileImage string `json:"profile_image,omitempty"`
}

// DisplayName returns the full name, falling back to the username.
func (u *CurrentUser) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// HasRole reports whether the user signed in with the given role.
func (u *CurrentUser) HasRole(r Role) bool {
	return u != nil && u.Role == r
}

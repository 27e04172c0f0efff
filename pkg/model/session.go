package model

import "time"

// Session is the client-held proof of authentication. Token and User are
// persisted together as a single record.
type Session struct {
	Token     string      `json:"token"`
	User      CurrentUser `json:"user"`
	CreatedAt time.Time   `json:"created_at"`
}

// Valid reports whether the record is complete enough to count as a session.
// A record missing either half is treated as no session at all.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User.Username != ""
}

// LoginRequest is the credential payload sent to the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// LoginData is the data payload of a successful login response.
type LoginData struct {
	Token string      `json:"token"`
	User  CurrentUser `json:"user"`
}

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/me/uniportal/pkg/model"
)

// SessionState is the client's authentication state.
type SessionState int

const (
	// Anonymous means no session is stored.
	Anonymous SessionState = iota
	// Authenticated means a complete session is stored.
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// LoginResult reports the outcome of Login. Login never returns an error;
// callers branch on Success instead.
type LoginResult struct {
	Success bool
	User    *model.CurrentUser
	Message string
}

// Login sends the credentials and, when the server reports success, stores
// the returned token and user snapshot as the new session. On any failure
// the stored session is left exactly as it was.
func (c *Client) Login(ctx context.Context, username, password string, role model.Role) LoginResult {
	if username == "" || password == "" {
		return LoginResult{Message: "username and password are required"}
	}
	if _, err := model.ParseRole(string(role)); err != nil {
		return LoginResult{Message: err.Error()}
	}

	req := model.Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   model.LoginRequest{Username: username, Password: password, Role: role},
	}

	// A 401 here means bad credentials, not an expired session.
	resp, err := c.do(ctx, req, false)
	if err != nil {
		c.logger.Info("login failed", "username", username, "role", role, "error", err)
		return LoginResult{Message: errorMessage(err)}
	}
	if !resp.Success {
		msg := resp.ErrorText()
		if msg == "" {
			msg = "login failed"
		}
		c.logger.Info("login rejected", "username", username, "role", role)
		return LoginResult{Message: msg}
	}

	var data model.LoginData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return LoginResult{Message: "unexpected login response: " + err.Error()}
	}
	if data.Token == "" {
		return LoginResult{Message: "login response did not include a token"}
	}
	if data.User.Username == "" {
		data.User.Username = username
	}
	if data.User.Role == "" {
		data.User.Role = role
	}

	sess := &model.Session{Token: data.Token, User: data.User, CreatedAt: c.now()}
	if err := c.store.Set(ctx, sess); err != nil {
		c.logger.Error("store session", "error", err)
		return LoginResult{Message: "could not save session: " + err.Error()}
	}

	c.logger.Info("logged in", "username", sess.User.Username, "role", sess.User.Role)
	user := sess.User
	return LoginResult{Success: true, User: &user}
}

// Logout tells the server the session is over, then clears the stored
// session regardless of whether the server could be reached. Only a failure
// to clear local state is returned.
func (c *Client) Logout(ctx context.Context) error {
	if c.token(ctx) != "" {
		req := model.Request{Method: http.MethodPost, Path: PathLogout}
		if _, err := c.do(ctx, req, false); err != nil {
			c.logger.Warn("logout notification failed", "error", err)
		}
	}
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.logger.Info("logged out")
	return nil
}

// IsAuthenticated reports whether a session is stored. It does not check
// the token with the server; see VerifyToken.
func (c *Client) IsAuthenticated(ctx context.Context) bool {
	return c.token(ctx) != ""
}

// State returns the current session state.
func (c *Client) State(ctx context.Context) SessionState {
	if c.IsAuthenticated(ctx) {
		return Authenticated
	}
	return Anonymous
}

// CurrentUser returns the user snapshot stored at login, or nil when there
// is no session or the stored record cannot be read.
func (c *Client) CurrentUser(ctx context.Context) *model.CurrentUser {
	sess, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Warn("stored session unreadable", "error", err)
		return nil
	}
	if !sess.Valid() {
		return nil
	}
	user := sess.User
	return &user
}

// Token returns the stored bearer token, or "" without a session.
func (c *Client) Token(ctx context.Context) string {
	return c.token(ctx)
}

// VerifyToken asks the server whether the stored token is still valid.
// Every failure, including having no token, yields false.
func (c *Client) VerifyToken(ctx context.Context) bool {
	if c.token(ctx) == "" {
		return false
	}
	resp, err := c.Do(ctx, model.Request{Method: http.MethodGet, Path: PathVerify})
	if err != nil {
		c.logger.Debug("token verification failed", "error", err)
		return false
	}
	return resp.Success
}

// errorMessage extracts a user-facing message from err.
func errorMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}

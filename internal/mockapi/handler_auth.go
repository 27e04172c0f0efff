package mockapi

import (
	"net/http"
	"strings"

	"github.com/me/uniportal/pkg/model"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, model.ErrValidation, "username and password are required")
		return
	}

	s.data.mu.RLock()
	acct, ok := s.data.accounts[req.Username]
	s.data.mu.RUnlock()

	if !ok || acct.password != req.Password {
		respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Invalid username or password")
		return
	}
	if req.Role != "" && req.Role != acct.user.Role {
		respondError(w, http.StatusUnauthorized, model.ErrUnauthorized, "Invalid credentials for role "+string(req.Role))
		return
	}

	token, err := s.tokens.issue(acct.user)
	if err != nil {
		s.logger.Error("issue token", "error", err)
		respondError(w, http.StatusInternalServerError, model.ErrInternal, "could not issue token")
		return
	}
	s.logger.Info("login", "username", acct.user.Username, "role", acct.user.Role)
	respondJSON(w, http.StatusOK, envelope{
		Success: true,
		Message: "Login successful",
		Data:    model.LoginData{Token: token, User: acct.user},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.tokens.revoke(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	respondMessage(w, "Logged out")
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]any{"valid": true, "user": userFromContext(r.Context())})
}

func (s *Server) handleNotices(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	today := s.now().Format("2006-01-02")

	s.data.mu.RLock()
	notices := s.data.notices.filter(func(n model.Notice) bool {
		if n.ExpiryDate != "" && n.ExpiryDate < today {
			return false
		}
		if user.Role == model.RoleAdmin {
			return true
		}
		return n.Audience == "" || n.Audience == "all" || n.Audience == string(user.Role)+"s"
	})
	s.data.mu.RUnlock()

	respondOK(w, notices)
}

package mockapi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/me/uniportal/pkg/model"
)

const issuer = "uniportal-mock"

var errRevoked = errors.New("token revoked")

// claims is the payload of an issued token.
type claims struct {
	Role       model.Role `json:"role"`
	FullName   string     `json:"name,omitempty"`
	UserID     string     `json:"uid,omitempty"`
	Generation int64      `json:"gen"`
	jwt.RegisteredClaims
}

// tokenManager issues and checks signed JWTs. Revocation is tracked per
// token id, and RevokeAll bumps a generation every older token falls under.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu         sync.Mutex
	generation int64
	revoked    map[string]struct{}
}

func newTokenManager(secret []byte, ttl time.Duration, now func() time.Time) *tokenManager {
	return &tokenManager{secret: secret, ttl: ttl, now: now, revoked: make(map[string]struct{})}
}

// issue signs a token for user.
func (t *tokenManager) issue(user model.CurrentUser) (string, error) {
	t.mu.Lock()
	gen := t.generation
	t.mu.Unlock()

	now := t.now()
	c := claims{
		Role:       user.Role,
		FullName:   user.FullName,
		UserID:     user.ID,
		Generation: gen,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// verify checks signature, expiry and revocation, and returns the caller.
func (t *tokenManager) verify(raw string) (*model.CurrentUser, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	_, revoked := t.revoked[c.ID]
	stale := c.Generation < t.generation
	t.mu.Unlock()
	if revoked || stale {
		return nil, errRevoked
	}
	return &model.CurrentUser{ID: c.UserID, Role: c.Role, FullName: c.FullName, Username: c.Subject}, nil
}

// revoke invalidates a single token. Unparseable tokens are ignored.
func (t *tokenManager) revoke(raw string) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil || c.ID == "" {
		return
	}
	t.mu.Lock()
	t.revoked[c.ID] = struct{}{}
	t.mu.Unlock()
}

// revokeAll invalidates every token issued so far.
func (t *tokenManager) revokeAll() {
	t.mu.Lock()
	t.generation++
	t.mu.Unlock()
}

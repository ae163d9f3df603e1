// Package session holds the authenticated-user state shared by the REST
// client and the push transport: the stored bearer token and the identity
// claims embedded in it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nzali-fankem-vladimir/gestion-clinic-client/internal/store"
)

// ErrNoToken is returned when no bearer token has been stored yet.
var ErrNoToken = errors.New("session: no token stored")

// User is the identity carried in the backend-issued token.
type User struct {
	ID   int
	Name string
	Role string
}

type tokenClaims struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Session persists the bearer token and exposes the current user parsed
// from its claims. The token is issued and signed by the backend; the
// client only decodes it, it does not verify the signature.
type Session struct {
	store store.Store

	mu    sync.RWMutex
	token string
	user  *User
}

// New restores any previously stored token from the durable store.
func New(ctx context.Context, st store.Store) (*Session, error) {
	s := &Session{store: st}
	data, err := st.Get(ctx, store.KeyToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return s, nil
		}
		return nil, fmt.Errorf("session: restore token: %w", err)
	}
	if err := s.setLocked(ctx, string(data), false); err != nil {
		// A corrupt stored token is discarded rather than poisoning startup.
		_ = st.Delete(ctx, store.KeyToken)
	}
	return s, nil
}

// SetToken stores a freshly issued bearer token and re-derives the user.
func (s *Session) SetToken(ctx context.Context, token string) error {
	return s.setLocked(ctx, token, true)
}

func (s *Session) setLocked(ctx context.Context, token string, persist bool) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session: empty token")
	}
	user, err := decodeUser(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if persist {
		if err := s.store.Set(ctx, store.KeyToken, []byte(token)); err != nil {
			return fmt.Errorf("session: persist token: %w", err)
		}
	}
	return nil
}

// Clear drops the token, both in memory and in the durable store. Called on
// a 401 from any backend endpoint.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return s.store.Delete(ctx, store.KeyToken)
}

// Token returns the stored bearer token.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", ErrNoToken
	}
	return s.token, nil
}

// CurrentUser returns the identity decoded from the stored token.
func (s *Session) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func decodeUser(token string) (*User, error) {
	claims := &tokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("session: decode token: %w", err)
	}
	user := &User{ID: claims.UserID, Name: claims.Name, Role: claims.Role}
	if user.ID == 0 && claims.Subject != "" {
		// Older tokens carry the user id in the subject claim only.
		if _, err := fmt.Sscanf(claims.Subject, "%d", &user.ID); err != nil {
			return nil, fmt.Errorf("session: token subject %q is not a user id", claims.Subject)
		}
	}
	if user.ID == 0 {
		return nil, errors.New("session: token carries no user id")
	}
	return user, nil
}

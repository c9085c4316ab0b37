package auth

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sadopc/kitchenos/internal/api"
)

// CredentialStore persists the access token between runs.
type CredentialStore interface {
	SaveToken(token string) error
	LoadToken() (string, error)
	DeleteToken() error
}

// Session holds the signed-in state: access token, current user and
// whether the token has been loaded from storage yet.
type Session struct {
	mu       sync.RWMutex
	store    CredentialStore
	token    string
	user     *api.User
	hydrated bool
}

func NewSession(store CredentialStore) *Session {
	return &Session{store: store}
}

// Hydrate loads the stored token. It marks the session hydrated even when
// no token is stored.
func (s *Session) Hydrate() error {
	token, err := s.store.LoadToken()
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.hydrated = true
	s.mu.Unlock()
	return nil
}

// SetToken stores token, or deletes the stored one when token is empty.
func (s *Session) SetToken(token string) error {
	var err error
	if token != "" {
		err = s.store.SaveToken(token)
	} else {
		err = s.store.DeleteToken()
	}
	if err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Session) SetUser(u *api.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// SignIn records a successful auth response.
func (s *Session) SignIn(resp *api.AuthResponse) error {
	if err := s.SetToken(resp.AccessToken); err != nil {
		return err
	}
	user := resp.User
	s.SetUser(&user)
	return nil
}

// Logout forgets the token and user and deletes the stored token.
func (s *Session) Logout() error {
	if err := s.store.DeleteToken(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
	return nil
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Hydrated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hydrated
}

func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

// Expired reports whether the token's exp claim is at or before now. The
// signature is not checked; the backend remains the authority. Tokens
// without a readable exp never expire here.
func (s *Session) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return false
	}
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}

// TokenExpiry reads the exp claim of a JWT without verifying it.
func TokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// AvatarLetter returns the upper-cased first letter of the user's name, or
// "U" when unknown.
func (s *Session) AvatarLetter() string {
	u := s.User()
	if u == nil {
		return "U"
	}
	name := strings.TrimSpace(u.Name)
	if name == "" {
		return "U"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return strings.ToUpper(string(r))
}

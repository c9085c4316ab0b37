package devserver

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const contextAccountKey = "account"

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(acc *account) (string, int, error) {
	now := s.now()
	claims := accessClaims{
		Email: acc.user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return token, int(tokenTTL / time.Second), nil
}

func (s *Server) parseToken(raw string) (*accessClaims, error) {
	claims := &accessClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthRequired resolves the bearer token to an account.
func (s *Server) AuthRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return apiError(c, fiber.StatusUnauthorized, "Unauthorized")
	}
	claims, err := s.parseToken(strings.TrimSpace(raw))
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	acc := s.accounts[claims.Subject]
	s.mu.Unlock()
	if revoked || acc == nil {
		return apiError(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	c.Locals(contextAccountKey, acc)
	c.Locals("tokenID", claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals("tokenExpires", claims.ExpiresAt.Time)
	}
	return c.Next()
}

func currentAccount(c *fiber.Ctx) *account {
	acc, _ := c.Locals(contextAccountKey).(*account)
	return acc
}

// newOTP returns a 6-digit one-time code.
func newOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// pruneRevoked drops revoked token IDs whose tokens have expired anyway.
func (s *Server) pruneRevoked(now time.Time) {
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
}

package store

import (
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
)

// TokenKey is the credential name of the backend access token.
const TokenKey = "auth_token"

// SaveCredential seals value and stores it under name, replacing any
// previous value.
func (s *Store) SaveCredential(name, value string) error {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nil, nonce, []byte(value), []byte(name))

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO credentials (name, nonce, ciphertext, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET nonce = excluded.nonce, ciphertext = excluded.ciphertext, updated_at = excluded.updated_at`,
		name, nonce, sealed, now,
	)
	if err != nil {
		return fmt.Errorf("save credential %q: %w", name, err)
	}
	return nil
}

// LoadCredential returns the value stored under name, or "" when there is none.
func (s *Store) LoadCredential(name string) (string, error) {
	var nonce, sealed []byte
	err := s.db.QueryRow(`SELECT nonce, ciphertext FROM credentials WHERE name = ?`, name).Scan(&nonce, &sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load credential %q: %w", name, err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	plain, err := aead.Open(nil, nonce, sealed, []byte(name))
	if err != nil {
		return "", fmt.Errorf("open credential %q: %w", name, err)
	}
	return string(plain), nil
}

func (s *Store) DeleteCredential(name string) error {
	_, err := s.db.Exec(`DELETE FROM credentials WHERE name = ?`, name)
	return err
}

// The token helpers satisfy auth.CredentialStore.

func (s *Store) SaveToken(token string) error {
	return s.SaveCredential(TokenKey, token)
}

func (s *Store) LoadToken() (string, error) {
	return s.LoadCredential(TokenKey)
}

func (s *Store) DeleteToken() error {
	return s.DeleteCredential(TokenKey)
}

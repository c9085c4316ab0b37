package auth

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrNameTooShort     = errors.New("enter your name")
	ErrEmailInvalid     = errors.New("enter a valid email")
	ErrPasswordTooShort = errors.New("at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrOTPInvalid       = errors.New("enter the 6-digit code")
)

const (
	minNameLength     = 2
	minPasswordLength = 6
	otpLength         = 6
)

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func ValidateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < minNameLength {
		return ErrNameTooShort
	}
	return nil
}

func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalid
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// ValidatePasswordConfirm checks the confirmation field of a new password.
func ValidatePasswordConfirm(password, confirm string) error {
	if err := ValidatePassword(confirm); err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func ValidateOTP(code string) error {
	code = strings.TrimSpace(code)
	if len(code) != otpLength {
		return ErrOTPInvalid
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return ErrOTPInvalid
		}
	}
	return nil
}

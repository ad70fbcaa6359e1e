package auth

import (
	"fmt"
	"unicode"

	apperrors "github.com/kobbyowen/focus/pkg/common/errors"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is lowered in tests.
var PasswordCost = bcrypt.DefaultCost

var (
	ErrPasswordTooShort = apperrors.WithMessage(apperrors.ErrMissingParameter, "password must be at least 8 characters")
	ErrPasswordTooWeak  = apperrors.WithMessage(apperrors.ErrMissingParameter, "password must contain a digit, a letter and a symbol")
)

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength 密码规则：同时包含数字、字母和特殊字符，最少8位
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	hasNumber := false
	hasLetter := false
	hasSpecial := false

	for _, c := range password {
		switch {
		case unicode.IsNumber(c):
			hasNumber = true
		case unicode.IsLetter(c):
			hasLetter = true
		case unicode.IsSymbol(c) || unicode.IsPunct(c):
			hasSpecial = true
		}
	}

	if !(hasNumber && hasLetter && hasSpecial) {
		return ErrPasswordTooWeak
	}
	return nil
}

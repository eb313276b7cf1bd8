package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/Spok95/school-discipline/internal/apperr"
)

func HashPassword(pwd string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword returns apperr.ErrUnauthenticated on mismatch.
func CheckPassword(hash, pwd string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperr.ErrUnauthenticated
	}
	return err
}

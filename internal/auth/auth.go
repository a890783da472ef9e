// Package auth produces and checks the credential material stored with a
// user. Storage treats the hash and salt as opaque strings.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
)

const saltBytes = 16

// ErrPasswordRequired is returned for an empty password.
var ErrPasswordRequired = errors.New("auth: password is required")

// Hash derives a bcrypt hash over password and a fresh random salt.
func Hash(password string) (hash, salt string, err error) {
	if password == "" {
		return "", "", ErrPasswordRequired
	}
	buf := make([]byte, saltBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	salt = hex.EncodeToString(buf)

	out, err := bcrypt.GenerateFromPassword([]byte(password+salt), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return string(out), salt, nil
}

// Verify reports whether password matches the user's stored credentials.
func Verify(password string, user domain.User) bool {
	if password == "" || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password+user.Salt)) == nil
}

// NewUser builds a registration payload with hashed credentials.
func NewUser(email, password, name string, role domain.Role) (domain.NewUser, error) {
	hash, salt, err := Hash(password)
	if err != nil {
		return domain.NewUser{}, err
	}
	return domain.NewUser{
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Name:         name,
		Role:         role,
	}, nil
}

package auth

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrForbidden          = errors.New("admin only")
)

// emailDomain: o cadastro é só por username; o email é sintético
const emailDomain = "@app.local"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmailFor monta o email sintético de um username
func EmailFor(username string) string {
	return strings.ToLower(username) + emailDomain
}

package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Users guarda as contas na tabela users
type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users { return &Users{db: db} }

// Create insere o usuário; username ou email repetido vira ErrUserExists
func (u *Users) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	err := u.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		user.ID, user.Username, user.Email, passwordHash, user.IsAdmin,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return User{}, ErrUserExists
		}
		return User{}, err
	}
	return user, nil
}

// FindByLogin aceita username ou email (sem diferenciar maiúsculas)
func (u *Users) FindByLogin(ctx context.Context, login string) (User, string, error) {
	var (
		user User
		hash string
	)
	err := u.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, is_admin, created_at
		  FROM users
		 WHERE lower(username) = lower($1) OR lower(email) = lower($1)`, login,
	).Scan(&user.ID, &user.Username, &user.Email, &hash, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrInvalidCredentials
	}
	return user, hash, err
}

func (u *Users) Get(ctx context.Context, id string) (User, error) {
	var user User
	err := u.db.QueryRowContext(ctx, `
		SELECT id, username, email, is_admin, created_at FROM users WHERE id::text = $1`, id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.IsAdmin, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUnauthenticated
	}
	return user, err
}

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	FindByLogin(ctx context.Context, login string) (User, string, error)
	Get(ctx context.Context, id string) (User, error)
}

type SessionStore interface {
	Create(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

type Credentials struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Service implementa cadastro, login e resolução de sessões
type Service struct {
	users    UserStore
	sessions SessionStore
	validate *validator.Validate
	admins   map[string]bool
	cost     int
	log      *zap.Logger
}

// NewService: admins lista usernames que viram administradores no cadastro
func NewService(users UserStore, sessions SessionStore, admins []string, log *zap.Logger) *Service {
	set := make(map[string]bool, len(admins))
	for _, a := range admins {
		if a = strings.TrimSpace(strings.ToLower(a)); a != "" {
			set[a] = true
		}
	}
	return &Service{
		users:    users,
		sessions: sessions,
		validate: validator.New(),
		admins:   set,
		cost:     bcrypt.DefaultCost,
		log:      log,
	}
}

// SignUp cria a conta; erros de validação voltam como validator.ValidationErrors
func (s *Service) SignUp(ctx context.Context, c Credentials) (User, error) {
	if err := s.validate.Struct(c); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), s.cost)
	if err != nil {
		return User{}, err
	}
	user, err := s.users.Create(ctx, User{
		ID:       uuid.NewString(),
		Username: c.Username,
		Email:    EmailFor(c.Username),
		IsAdmin:  s.admins[strings.ToLower(c.Username)],
	}, string(hash))
	if err != nil {
		return User{}, err
	}
	s.log.Info("user signed up", zap.String("user_id", user.ID), zap.Bool("admin", user.IsAdmin))
	return user, nil
}

// SignIn aceita username ou o email sintético
func (s *Service) SignIn(ctx context.Context, login, password string) (string, User, error) {
	if login == "" || password == "" {
		return "", User{}, ErrInvalidCredentials
	}
	user, hash, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return "", User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", User{}, ErrInvalidCredentials
	}
	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Authenticate resolve o token para o usuário; conta apagada invalida a sessão
func (s *Service) Authenticate(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrUnauthenticated
	}
	id, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return User{}, err
	}
	user, err := s.users.Get(ctx, id)
	if errors.Is(err, ErrUnauthenticated) {
		_ = s.sessions.Delete(ctx, token)
	}
	return user, err
}

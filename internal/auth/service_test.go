package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Create(ctx context.Context, user User, hash string) (User, error) {
	args := m.Called(ctx, user, hash)
	return args.Get(0).(User), args.Error(1)
}

func (m *mockUsers) FindByLogin(ctx context.Context, login string) (User, string, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(User), args.String(1), args.Error(2)
}

func (m *mockUsers) Get(ctx context.Context, id string) (User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(User), args.Error(1)
}

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Create(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockSessions) Lookup(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockSessions) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func newTestService(users *mockUsers, sessions *mockSessions) *Service {
	svc := NewService(users, sessions, []string{" Admin ", ""}, zap.NewNop())
	svc.cost = bcrypt.MinCost
	return svc
}

func TestEmailFor(t *testing.T) {
	assert.Equal(t, "joao@app.local", EmailFor("Joao"))
}

func TestSignUp(t *testing.T) {
	tests := map[string]struct {
		creds     Credentials
		wantAdmin bool
		wantValid bool
	}{
		"regular user":     {creds: Credentials{Username: "bob", Password: "secret1"}, wantValid: true},
		"admin by config":  {creds: Credentials{Username: "ADMIN", Password: "secret1"}, wantAdmin: true, wantValid: true},
		"short username":   {creds: Credentials{Username: "bo", Password: "secret1"}},
		"short password":   {creds: Credentials{Username: "bobby", Password: "123"}},
		"symbols in login": {creds: Credentials{Username: "bob@x", Password: "secret1"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			users := &mockUsers{}
			svc := newTestService(users, &mockSessions{})

			if tc.wantValid {
				users.On("Create", mock.Anything, mock.MatchedBy(func(u User) bool {
					return u.Username == tc.creds.Username && u.IsAdmin == tc.wantAdmin &&
						u.Email == EmailFor(tc.creds.Username) && u.ID != ""
				}), mock.MatchedBy(func(hash string) bool {
					return bcrypt.CompareHashAndPassword([]byte(hash), []byte(tc.creds.Password)) == nil
				})).Return(User{ID: "u1", Username: tc.creds.Username, IsAdmin: tc.wantAdmin}, nil)
			}

			user, err := svc.SignUp(context.Background(), tc.creds)
			if !tc.wantValid {
				var verrs validator.ValidationErrors
				assert.True(t, errors.As(err, &verrs), "expected validation error, got %v", err)
				users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAdmin, user.IsAdmin)
			users.AssertExpectations(t)
		})
	}
}

func TestSignUpDuplicate(t *testing.T) {
	users := &mockUsers{}
	users.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(User{}, ErrUserExists)

	_, err := newTestService(users, &mockSessions{}).SignUp(context.Background(), Credentials{Username: "bob", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSignIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	bob := User{ID: "u1", Username: "bob"}

	t.Run("valid credentials issue a session", func(t *testing.T) {
		users, sessions := &mockUsers{}, &mockSessions{}
		users.On("FindByLogin", mock.Anything, "bob@app.local").Return(bob, string(hash), nil)
		sessions.On("Create", mock.Anything, "u1").Return("tok", nil)

		token, user, err := newTestService(users, sessions).SignIn(context.Background(), "bob@app.local", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "tok", token)
		assert.Equal(t, bob, user)
	})

	t.Run("wrong password", func(t *testing.T) {
		users, sessions := &mockUsers{}, &mockSessions{}
		users.On("FindByLogin", mock.Anything, "bob").Return(bob, string(hash), nil)

		_, _, err := newTestService(users, sessions).SignIn(context.Background(), "bob", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		users := &mockUsers{}
		users.On("FindByLogin", mock.Anything, "ghost").Return(User{}, "", ErrInvalidCredentials)

		_, _, err := newTestService(users, &mockSessions{}).SignIn(context.Background(), "ghost", "secret1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := newTestService(&mockUsers{}, &mockSessions{}).SignIn(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid session", func(t *testing.T) {
		users, sessions := &mockUsers{}, &mockSessions{}
		sessions.On("Lookup", mock.Anything, "tok").Return("u1", nil)
		users.On("Get", mock.Anything, "u1").Return(User{ID: "u1"}, nil)

		user, err := newTestService(users, sessions).Authenticate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("expired session", func(t *testing.T) {
		sessions := &mockSessions{}
		sessions.On("Lookup", mock.Anything, "old").Return("", ErrUnauthenticated)

		_, err := newTestService(&mockUsers{}, sessions).Authenticate(context.Background(), "old")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("deleted user drops the session", func(t *testing.T) {
		users, sessions := &mockUsers{}, &mockSessions{}
		sessions.On("Lookup", mock.Anything, "tok").Return("u1", nil)
		sessions.On("Delete", mock.Anything, "tok").Return(nil)
		users.On("Get", mock.Anything, "u1").Return(User{}, ErrUnauthenticated)

		_, err := newTestService(users, sessions).Authenticate(context.Background(), "tok")
		assert.ErrorIs(t, err, ErrUnauthenticated)
		sessions.AssertExpectations(t)
	})
}

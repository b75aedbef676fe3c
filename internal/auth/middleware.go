package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/live-betting-platform/pkg/contracts/headers"
)

type ctxKey struct{}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (User, error)
}

// UserFrom devolve o usuário autenticado pelo Middleware
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(ctxKey{}).(User)
	return u, ok
}

// BearerToken lê "Authorization: Bearer <token>"
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Middleware descarta os headers de identidade vindos do cliente e, com sessão válida,
// coloca o usuário no contexto e nos headers repassados aos serviços internos.
// Sem sessão a requisição segue anônima.
func Middleware(a Authenticator, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(headers.UserID)
			r.Header.Del(headers.UserAdmin)

			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := a.Authenticate(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrUnauthenticated) {
					log.Warn("session lookup failed", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}

			r.Header.Set(headers.UserID, user.ID)
			r.Header.Set(headers.UserAdmin, strconv.FormatBool(user.IsAdmin))
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
		})
	}
}

func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, ErrUnauthenticated.Error())
			return
		}
		if !u.IsAdmin {
			writeError(w, http.StatusForbidden, ErrForbidden.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

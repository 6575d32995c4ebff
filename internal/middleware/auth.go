package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"stellar/internal/auth"
	"stellar/internal/models"
	"stellar/internal/store"
)

type ctxKey struct{}

// UserLookup loads the account behind a token subject.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type AuthMiddleware struct {
	tokens *auth.Tokens
	users  UserLookup
	logger *zap.Logger
}

func NewAuthMiddleware(tokens *auth.Tokens, users UserLookup, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, logger: logger}
}

// RequireAuth accepts a valid access token for an active user.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			unauthorized(w, "missing token")
			return
		}
		userID, err := m.tokens.Parse(strings.TrimPrefix(authz, "Bearer "), auth.TypeAccess)
		if err != nil {
			unauthorized(w, "invalid token")
			return
		}
		user, err := m.users.GetUserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(w, "invalid token")
				return
			}
			m.logger.Error("load user for token", zap.String("user_id", userID), zap.Error(err))
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}
		if !user.IsActive {
			http.Error(w, "user is disabled", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireVerified must run after RequireAuth.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r.Context())
		if !ok {
			unauthorized(w, "missing token")
			return
		}
		if !user.IsEmailVerified {
			http.Error(w, "email not verified", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, msg, http.StatusUnauthorized)
}

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(*models.User)
	return u, ok && u != nil
}

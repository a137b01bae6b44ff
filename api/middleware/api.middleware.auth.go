package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// UserResolver maps a validated token subject to an active account.
type UserResolver interface {
	ResolveActiveUser(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware authenticates requests with bearer tokens issued by
// the token service.
type AuthMiddleware struct {
	tokens *auth.TokenService
	users  UserResolver
}

type userContextKey struct{}

func NewAuthMiddleware(tokens *auth.TokenService, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// Authenticate validates the bearer token, resolves the subject to an
// active user and adds it to the request context. Missing, invalid and
// expired tokens fail with 401; a valid token for a deactivated
// account fails with 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		subject, err := m.tokens.Validate(token)
		if err != nil {
			// Expired and invalid are distinguished in the log only;
			// the caller sees one generic credential failure.
			nuts.L.Infof("[Auth] Rejected token: %v", err)
			handleError(w, errors.NewAuthError("could not validate credentials", err))
			return
		}

		user, err := m.users.ResolveActiveUser(r.Context(), subject)
		if err != nil {
			handleError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user stored by Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*models.User)
	return user, ok
}

// Helper functions

func extractToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return ""
}

func handleError(w http.ResponseWriter, err error) {
	apiErr, ok := err.(*errors.APIError)
	if !ok {
		apiErr = errors.NewInternalError("internal server error", err)
	}
	w.Header().Set("Content-Type", "application/json")
	if apiErr.Code == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.WriteHeader(apiErr.Code)
	json.NewEncoder(w).Encode(apiErr)
}

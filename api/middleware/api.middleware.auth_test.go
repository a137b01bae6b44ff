package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

type fakeResolver struct {
	users map[string]*models.User
}

func (f *fakeResolver) ResolveActiveUser(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, errors.NewAuthError("could not validate credentials", nil)
	}
	if !user.IsActive {
		return nil, errors.NewAuthorizationError("inactive user", nil)
	}
	return user, nil
}

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService([]byte("test-secret"), 30*time.Minute)
	resolver := &fakeResolver{users: map[string]*models.User{
		"agribot": {ID: 1, Username: "agribot", IsActive: true},
		"retired": {ID: 2, Username: "retired", IsActive: false},
	}}
	return NewAuthMiddleware(tokens, resolver), tokens
}

func TestAuthenticate(t *testing.T) {
	mw, tokens := newTestMiddleware(t)

	activeToken, err := tokens.Issue("agribot")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	inactiveToken, err := tokens.Issue("retired")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	unknownToken, err := tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	expiredToken, err := tokens.IssueWithTTL("agribot", -time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL failed: %v", err)
	}

	cases := []struct {
		name          string
		authorization string
		wantStatus    int
		wantUser      string
	}{
		{"Valid token for active user", "Bearer " + activeToken, http.StatusOK, "agribot"},
		{"Lowercase scheme accepted", "bearer " + activeToken, http.StatusOK, "agribot"},
		{"Missing header", "", http.StatusUnauthorized, ""},
		{"Wrong scheme", "Basic " + activeToken, http.StatusUnauthorized, ""},
		{"Garbage token", "Bearer not.a.token", http.StatusUnauthorized, ""},
		{"Expired token", "Bearer " + expiredToken, http.StatusUnauthorized, ""},
		{"Unknown subject", "Bearer " + unknownToken, http.StatusUnauthorized, ""},
		{"Inactive user", "Bearer " + inactiveToken, http.StatusForbidden, ""},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var gotUser string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if user, ok := UserFromContext(r.Context()); ok {
					gotUser = user.Username
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/missions", nil)
			if c.authorization != "" {
				req.Header.Set("Authorization", c.authorization)
			}
			rec := httptest.NewRecorder()

			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != c.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, c.wantStatus, rec.Body.String())
			}
			if gotUser != c.wantUser {
				t.Errorf("user in context = %q, want %q", gotUser, c.wantUser)
			}
			if c.wantStatus == http.StatusUnauthorized {
				if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
					t.Errorf("WWW-Authenticate = %q, want Bearer", got)
				}
			}
		})
	}
}

func TestUserFromContextEmpty(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("UserFromContext reported a user on an empty context")
	}
}

// FilePath: internal/ingestservice/ingestservice.users.go
package ingestservice

import (
	"context"

	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Authenticate verifies a username/password pair. An unknown user and
// a wrong password produce the same error so callers cannot probe for
// account existence.
func (s *IngestService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthError("incorrect username or password", nil)
		}
		return nil, err
	}

	if !s.Passwords.Verify(password, user.PasswordHash) {
		return nil, errors.NewAuthError("incorrect username or password", nil)
	}

	nuts.L.Infof("[UserService] Authenticated user %s", user.Username)
	return user, nil
}

// ResolveActiveUser maps a validated token subject to an active user.
// An unknown subject is reported as invalid credentials; a known but
// deactivated account is a distinct authorization failure.
func (s *IngestService) ResolveActiveUser(ctx context.Context, username string) (*models.User, error) {
	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewAuthError("could not validate credentials", nil)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errors.NewAuthorizationError("inactive user", nil)
	}
	return user, nil
}

// FilePath: internal/ingestservice/ingestservice.go
package ingestservice

import (
	"github.com/agrirobotics/datalake/internal/auth"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/repository"
)

// IngestService contains all repositories and service-wide dependencies
type IngestService struct {
	Users     repository.UserRepository
	Missions  repository.MissionRepository
	Telemetry repository.TelemetryRepository
	Images    repository.ImageRepository
	Store     repository.ObjectStore
	Cache     repository.LatestStateCache
	Passwords *auth.PasswordHasher
}

// New creates a new IngestService instance
func New(
	users repository.UserRepository,
	missions repository.MissionRepository,
	telemetry repository.TelemetryRepository,
	images repository.ImageRepository,
	store repository.ObjectStore,
	cache repository.LatestStateCache,
	passwords *auth.PasswordHasher,
) *IngestService {
	return &IngestService{
		Users:     users,
		Missions:  missions,
		Telemetry: telemetry,
		Images:    images,
		Store:     store,
		Cache:     cache,
		Passwords: passwords,
	}
}

// Validate checks if all required dependencies are initialized
func (s *IngestService) Validate() error {
	if s.Users == nil {
		return ErrMissingDependency("users")
	}
	if s.Missions == nil {
		return ErrMissingDependency("missions")
	}
	if s.Telemetry == nil {
		return ErrMissingDependency("telemetry")
	}
	if s.Images == nil {
		return ErrMissingDependency("images")
	}
	if s.Store == nil {
		return ErrMissingDependency("objectStore")
	}
	if s.Passwords == nil {
		return ErrMissingDependency("passwords")
	}
	return nil
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}

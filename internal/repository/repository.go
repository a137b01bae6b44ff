// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"io"

	"github.com/agrirobotics/datalake/internal/models"
)

// UserRepository reads API accounts. Accounts are provisioned
// out-of-band; this service never writes them.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// MissionRepository defines the interface for mission summary rows
type MissionRepository interface {
	Create(ctx context.Context, mission *models.Mission) (*models.Mission, error)
	Get(ctx context.Context, id int64) (*models.Mission, error)
	List(ctx context.Context, offset, limit int) ([]*models.Mission, error)
}

// TelemetryRepository defines the interface for mission time-series
// rows. Batch inserts are all-or-nothing: a partial batch must never
// be committed.
type TelemetryRepository interface {
	InsertRobotStates(ctx context.Context, missionID int64, states []models.RobotState) error
	ListRobotStates(ctx context.Context, missionID int64) ([]models.RobotState, error)
	LatestRobotState(ctx context.Context, missionID int64) (*models.RobotState, error)
	InsertAgriEvents(ctx context.Context, missionID int64, events []models.AgriEvent) error
	ListAgriEvents(ctx context.Context, missionID int64) ([]models.AgriEvent, error)
}

// ImageRepository defines the interface for image metadata and
// prediction rows
type ImageRepository interface {
	CreateImage(ctx context.Context, image *models.MissionImage) (int64, error)
	InsertPredictions(ctx context.Context, imageID int64, predictions []models.ImagePrediction) error
}

// ObjectStore is the binary payload store for images. The relational
// row only ever points at an object the store has acknowledged.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, objectName string, reader io.Reader, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
}

// LatestStateCache holds the newest robot state per mission.
type LatestStateCache interface {
	SetLatestState(ctx context.Context, missionID int64, state *models.RobotState) error
	GetLatestState(ctx context.Context, missionID int64) (*models.RobotState, error)
}

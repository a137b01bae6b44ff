// FilePath: internal/ingestservice/ingestservice.missions.go
package ingestservice

import (
	"context"

	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// CreateMission validates and persists one mission summary for the
// authenticated creator and returns the persisted row.
func (s *IngestService) CreateMission(ctx context.Context, mission *models.Mission, creatorID int64) (*models.Mission, error) {
	if mission.RobotID == 0 {
		return nil, errors.NewValidationError("robot_id is required", nil)
	}
	if mission.FieldID == 0 {
		return nil, errors.NewValidationError("field_id is required", nil)
	}
	if mission.MissionType == "" {
		return nil, errors.NewValidationError("mission_type is required", nil)
	}
	if mission.StartTime.IsZero() || mission.EndTime.IsZero() {
		return nil, errors.NewValidationError("start_time and end_time are required", nil)
	}
	if mission.EndTime.Before(mission.StartTime) {
		return nil, errors.NewValidationError("end_time precedes start_time", nil)
	}

	mission.UserID = creatorID

	created, err := s.Missions.Create(ctx, mission)
	if err != nil {
		return nil, err
	}

	nuts.L.Infof("[MissionService] Created mission %d (robot %d, field %d)",
		created.ID, created.RobotID, created.FieldID)
	return created, nil
}

// GetMission returns one mission by id.
func (s *IngestService) GetMission(ctx context.Context, id int64) (*models.Mission, error) {
	return s.Missions.Get(ctx, id)
}

// ListMissions returns a page of missions, newest start_time first.
func (s *IngestService) ListMissions(ctx context.Context, offset, limit int) ([]*models.Mission, error) {
	if limit <= 0 || limit > 200 {
		limit = 50 // Default limit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Missions.List(ctx, offset, limit)
}

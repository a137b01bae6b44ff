// FilePath: internal/ingestservice/ingestservice.telemetry.go
package ingestservice

import (
	"context"

	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// AddRobotStates validates and persists a batch of robot state samples
// for a mission and returns the inserted count. The batch commits
// atomically; a referenced mission that does not exist surfaces as not
// found via the store's foreign key constraint rather than a pre-check.
func (s *IngestService) AddRobotStates(ctx context.Context, missionID int64, states []models.RobotState) (int, error) {
	if len(states) == 0 {
		return 0, errors.NewValidationError("robot state batch is empty", nil)
	}
	for i := range states {
		if states[i].Timestamp.IsZero() {
			return 0, errors.NewValidationError("robot state sample missing timestamp", nil)
		}
	}

	if err := s.Telemetry.InsertRobotStates(ctx, missionID, states); err != nil {
		return 0, err
	}

	s.cacheLatestState(ctx, missionID, states)

	nuts.L.Infof("[TelemetryService] Added %d robot states to mission %d", len(states), missionID)
	return len(states), nil
}

// cacheLatestState stores the newest sample of a committed batch. A
// cache failure never fails the ingest.
func (s *IngestService) cacheLatestState(ctx context.Context, missionID int64, states []models.RobotState) {
	if s.Cache == nil {
		return
	}
	latest := &states[0]
	for i := range states {
		if states[i].Timestamp.After(latest.Timestamp) {
			latest = &states[i]
		}
	}
	if err := s.Cache.SetLatestState(ctx, missionID, latest); err != nil {
		nuts.L.Warnf("[TelemetryService] Failed to cache latest state for mission %d: %v", missionID, err)
	}
}

// GetRobotStates returns all samples for a mission, oldest first.
func (s *IngestService) GetRobotStates(ctx context.Context, missionID int64) ([]models.RobotState, error) {
	return s.Telemetry.ListRobotStates(ctx, missionID)
}

// GetLatestRobotState serves the newest sample from the cache when
// possible and falls back to the store on miss or cache error.
func (s *IngestService) GetLatestRobotState(ctx context.Context, missionID int64) (*models.RobotState, error) {
	if s.Cache != nil {
		state, err := s.Cache.GetLatestState(ctx, missionID)
		if err == nil {
			return state, nil
		}
	}
	return s.Telemetry.LatestRobotState(ctx, missionID)
}

// AddAgriEvents validates and persists a batch of agri events for a
// mission and returns the inserted count.
func (s *IngestService) AddAgriEvents(ctx context.Context, missionID int64, events []models.AgriEvent) (int, error) {
	if len(events) == 0 {
		return 0, errors.NewValidationError("agri event batch is empty", nil)
	}
	for i := range events {
		if events[i].Timestamp.IsZero() {
			return 0, errors.NewValidationError("agri event missing timestamp", nil)
		}
		if events[i].EventType == "" {
			return 0, errors.NewValidationError("agri event missing event_type", nil)
		}
	}

	if err := s.Telemetry.InsertAgriEvents(ctx, missionID, events); err != nil {
		return 0, err
	}

	nuts.L.Infof("[TelemetryService] Added %d agri events to mission %d", len(events), missionID)
	return len(events), nil
}

// GetAgriEvents returns all events for a mission, oldest first.
func (s *IngestService) GetAgriEvents(ctx context.Context, missionID int64) ([]models.AgriEvent, error) {
	return s.Telemetry.ListAgriEvents(ctx, missionID)
}

// FilePath: internal/repository/postgres/postgres.telemetry.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

type TelemetryRepo struct {
	PostgresBaseRepo
}

func NewTelemetryRepository(db database.DB) *TelemetryRepo {
	repo := &PostgresBaseRepo{db: db}
	return &TelemetryRepo{PostgresBaseRepo: *repo}
}

// InsertRobotStates bulk-inserts a batch of robot state samples in one
// multi-row statement inside one transaction. Either the whole batch
// commits or none of it does.
func (r *TelemetryRepo) InsertRobotStates(ctx context.Context, missionID int64, states []models.RobotState) error {
	for i := range states {
		states[i].MissionID = missionID
	}

	query := `
		INSERT INTO robot_state_timeseries (
			mission_id, timestamp, system_state, latitude_rad, longitude_rad,
			pose_x_m, pose_y_m, pose_theta_rad, speed_x_mps, speed_y_mps,
			speed_omega_radps, unit0_fluid_l, unit1_fluid_l, unit2_fluid_l,
			target_coverage_percent, avoid_coverage_percent
		) VALUES (
			:mission_id, :timestamp, :system_state, :latitude_rad, :longitude_rad,
			:pose_x_m, :pose_y_m, :pose_theta_rad, :speed_x_mps, :speed_y_mps,
			:speed_omega_radps, :unit0_fluid_l, :unit1_fluid_l, :unit2_fluid_l,
			:target_coverage_percent, :avoid_coverage_percent
		)`

	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, query, states); err != nil {
		return mapConstraintError(err,
			"failed to insert robot states",
			"mission not found",
			"duplicate robot state sample")
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit robot state batch", err)
	}
	return nil
}

func (r *TelemetryRepo) ListRobotStates(ctx context.Context, missionID int64) ([]models.RobotState, error) {
	states := []models.RobotState{}
	query := `SELECT * FROM robot_state_timeseries WHERE mission_id = $1 ORDER BY timestamp ASC`

	err := r.db.GetDB().SelectContext(ctx, &states, query, missionID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list robot states", err)
	}
	return states, nil
}

func (r *TelemetryRepo) LatestRobotState(ctx context.Context, missionID int64) (*models.RobotState, error) {
	state := &models.RobotState{}
	query := `SELECT * FROM robot_state_timeseries WHERE mission_id = $1 ORDER BY timestamp DESC LIMIT 1`

	err := r.db.GetDB().GetContext(ctx, state, query, missionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("no robot state recorded for mission", err)
		}
		return nil, errors.NewDatabaseError("failed to get latest robot state", err)
	}
	return state, nil
}

// InsertAgriEvents bulk-inserts a batch of agri events, all-or-nothing
// like robot states.
func (r *TelemetryRepo) InsertAgriEvents(ctx context.Context, missionID int64, events []models.AgriEvent) error {
	for i := range events {
		events[i].MissionID = missionID
	}

	query := `
		INSERT INTO agri_events (
			mission_id, timestamp, latitude, longitude, altitude, event_type, event_value
		) VALUES (
			:mission_id, :timestamp, :latitude, :longitude, :altitude, :event_type, :event_value
		)`

	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, query, events); err != nil {
		return mapConstraintError(err,
			"failed to insert agri events",
			"mission not found",
			"duplicate agri event")
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit agri event batch", err)
	}
	return nil
}

func (r *TelemetryRepo) ListAgriEvents(ctx context.Context, missionID int64) ([]models.AgriEvent, error) {
	events := []models.AgriEvent{}
	query := `SELECT * FROM agri_events WHERE mission_id = $1 ORDER BY timestamp ASC`

	err := r.db.GetDB().SelectContext(ctx, &events, query, missionID)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list agri events", err)
	}
	return events, nil
}

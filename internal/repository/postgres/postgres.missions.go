// FilePath: internal/repository/postgres/postgres.missions.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

type MissionRepo struct {
	PostgresBaseRepo
}

func NewMissionRepository(db database.DB) *MissionRepo {
	repo := &PostgresBaseRepo{db: db}
	return &MissionRepo{PostgresBaseRepo: *repo}
}

// Create inserts one mission row and returns the persisted row
// including the generated id and created_at.
func (r *MissionRepo) Create(ctx context.Context, mission *models.Mission) (*models.Mission, error) {
	query := `
		INSERT INTO missions (
			robot_id, field_id, user_id, mission_type, start_time, end_time,
			travelled_distance_m, covered_area_m2, sprayed_fluid_l,
			target_fluid_density_lpha, setpoint_pressure_bar, cultivation_method,
			inference_model, context_crop_id, target_id, min_latitude,
			max_latitude, min_longitude, max_longitude, crop_weed_correlation,
			weed_liquid_correlation
		) VALUES (
			:robot_id, :field_id, :user_id, :mission_type, :start_time, :end_time,
			:travelled_distance_m, :covered_area_m2, :sprayed_fluid_l,
			:target_fluid_density_lpha, :setpoint_pressure_bar, :cultivation_method,
			:inference_model, :context_crop_id, :target_id, :min_latitude,
			:max_latitude, :min_longitude, :max_longitude, :crop_weed_correlation,
			:weed_liquid_correlation
		) RETURNING *`

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, mission)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to create mission", err)
	}
	defer rows.Close()

	created := &models.Mission{}
	if !rows.Next() {
		return nil, errors.NewDatabaseError("mission insert returned no row", rows.Err())
	}
	if err := rows.StructScan(created); err != nil {
		return nil, errors.NewDatabaseError("failed to scan created mission", err)
	}
	return created, nil
}

func (r *MissionRepo) Get(ctx context.Context, id int64) (*models.Mission, error) {
	mission := &models.Mission{}
	query := `SELECT * FROM missions WHERE id = $1`

	err := r.db.GetDB().GetContext(ctx, mission, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("mission not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get mission", err)
	}
	return mission, nil
}

func (r *MissionRepo) List(ctx context.Context, offset, limit int) ([]*models.Mission, error) {
	missions := []*models.Mission{}
	query := `SELECT * FROM missions ORDER BY start_time DESC LIMIT $1 OFFSET $2`

	err := r.db.GetDB().SelectContext(ctx, &missions, query, limit, offset)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list missions", err)
	}
	return missions, nil
}

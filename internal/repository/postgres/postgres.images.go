// FilePath: internal/repository/postgres/postgres.images.go
package postgres

import (
	"context"

	"github.com/agrirobotics/datalake/internal/database"
	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
)

type ImageRepo struct {
	PostgresBaseRepo
}

func NewImageRepository(db database.DB) *ImageRepo {
	repo := &PostgresBaseRepo{db: db}
	return &ImageRepo{PostgresBaseRepo: *repo}
}

// CreateImage records the metadata row for an image whose payload is
// already durable in object storage, and returns the generated id.
func (r *ImageRepo) CreateImage(ctx context.Context, image *models.MissionImage) (int64, error) {
	query := `
		INSERT INTO mission_images (
			mission_id, timestamp, image_url, latitude, longitude, camera_id
		) VALUES (
			:mission_id, :timestamp, :image_url, :latitude, :longitude, :camera_id
		) RETURNING id`

	rows, err := r.db.GetDB().NamedQueryContext(ctx, query, image)
	if err != nil {
		return 0, mapConstraintError(err,
			"failed to create mission image",
			"mission not found",
			"duplicate mission image")
	}
	defer rows.Close()

	var id int64
	if !rows.Next() {
		return 0, errors.NewDatabaseError("image insert returned no row", rows.Err())
	}
	if err := rows.Scan(&id); err != nil {
		return 0, errors.NewDatabaseError("failed to scan image id", err)
	}
	return id, nil
}

// InsertPredictions bulk-inserts detection results for an image in one
// statement inside one transaction.
func (r *ImageRepo) InsertPredictions(ctx context.Context, imageID int64, predictions []models.ImagePrediction) error {
	for i := range predictions {
		predictions[i].ImageID = imageID
	}

	query := `
		INSERT INTO image_predictions (
			detection_id, image_id, class_name, confidence, x, y, width, height
		) VALUES (
			:detection_id, :image_id, :class_name, :confidence, :x, :y, :width, :height
		)`

	tx, err := r.db.GetDB().BeginTxx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, query, predictions); err != nil {
		return mapConstraintError(err,
			"failed to insert predictions",
			"image not found",
			"duplicate detection id")
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseError("failed to commit prediction batch", err)
	}
	return nil
}

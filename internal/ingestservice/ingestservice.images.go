// FilePath: internal/ingestservice/ingestservice.images.go
package ingestservice

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/models"
	"github.com/google/uuid"
	nuts "github.com/vaudience/go-nuts"
)

// ImageUpload carries the caller-supplied metadata for one image.
type ImageUpload struct {
	Timestamp time.Time
	Latitude  *float64
	Longitude *float64
	CameraID  *int64
}

// UploadImage streams an image payload to object storage and then
// records the metadata row pointing at it. The two writes form a saga:
// if the object write fails no row is created, and if the row insert
// fails the uploaded object is removed best-effort so orphans only
// remain when the compensating delete itself fails (logged for
// out-of-band cleanup).
func (s *IngestService) UploadImage(ctx context.Context, missionID int64, upload ImageUpload, filename string, body io.Reader, contentType string) (*models.MissionImage, error) {
	if upload.Timestamp.IsZero() {
		return nil, errors.NewValidationError("timestamp is required", nil)
	}
	if body == nil {
		return nil, errors.NewValidationError("image payload is required", nil)
	}

	if err := s.Store.EnsureBucket(ctx); err != nil {
		return nil, errors.NewStorageError("failed to ensure image bucket", err)
	}

	objectName := buildObjectName(missionID, filename)

	imageURL, err := s.Store.Put(ctx, objectName, body, contentType)
	if err != nil {
		return nil, errors.NewStorageError("failed to store image payload", err)
	}

	image := &models.MissionImage{
		MissionID: missionID,
		Timestamp: upload.Timestamp,
		ImageURL:  imageURL,
		Latitude:  upload.Latitude,
		Longitude: upload.Longitude,
		CameraID:  upload.CameraID,
	}

	id, err := s.Images.CreateImage(ctx, image)
	if err != nil {
		if removeErr := s.Store.Remove(ctx, objectName); removeErr != nil {
			nuts.L.Errorf("[ImageService] Orphaned object %s after failed metadata insert: %v", objectName, removeErr)
		}
		return nil, err
	}
	image.ID = id

	nuts.L.Infof("[ImageService] Stored image %d for mission %d at %s", id, missionID, imageURL)
	return image, nil
}

// buildObjectName combines the mission id with a fresh random id and
// the original extension. Attacker-controlled filenames contribute
// only their extension, so collisions and path traversal are off the
// table.
func buildObjectName(missionID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return fmt.Sprintf("%d/%s%s", missionID, uuid.New().String(), ext)
}

// AddPredictions validates and persists a batch of detection results
// for an image, assigning a generated detection id where the caller
// did not supply one, and returns the inserted count.
func (s *IngestService) AddPredictions(ctx context.Context, imageID int64, predictions []models.ImagePrediction) (int, error) {
	if len(predictions) == 0 {
		return 0, errors.NewValidationError("prediction batch is empty", nil)
	}
	for i := range predictions {
		if predictions[i].ClassName == "" {
			return 0, errors.NewValidationError("prediction missing class", nil)
		}
		if predictions[i].Confidence < 0 || predictions[i].Confidence > 1 {
			return 0, errors.NewValidationError("prediction confidence out of range", nil)
		}
		if predictions[i].DetectionID == "" {
			predictions[i].DetectionID = uuid.New().String()
		}
	}

	if err := s.Images.InsertPredictions(ctx, imageID, predictions); err != nil {
		return 0, err
	}

	nuts.L.Infof("[ImageService] Added %d predictions to image %d", len(predictions), imageID)
	return len(predictions), nil
}

// FilePath: api/resources/api.resource.images.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agrirobotics/datalake/internal/errors"
	"github.com/agrirobotics/datalake/internal/ingestservice"
	"github.com/agrirobotics/datalake/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ImageHandlers encapsulates the image-related HTTP handlers
type ImageHandlers struct {
	svc           *ingestservice.IngestService
	maxUploadSize int64
}

type imageUploadForm struct {
	Timestamp time.Time `schema:"timestamp,required"`
	Latitude  float64   `schema:"latitude,required"`
	Longitude float64   `schema:"longitude,required"`
	CameraID  *int64    `schema:"camera_id"`
}

type imageUploadResponse struct {
	ImageID  int64  `json:"image_id"`
	ImageURL string `json:"image_url"`
}

// @Summary Upload an image and its metadata
// @Description Store the image payload in object storage and record its metadata
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param mission_id path int true "Mission ID"
// @Param timestamp formData string true "Capture time (RFC 3339)"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param camera_id formData int false "Camera ID"
// @Param image formData file true "Image file"
// @Success 201 {object} imageUploadResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /missions/{mission_id}/images [post]
// @Security BearerAuth
func (h *ImageHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	missionID, err := pathID(r, "mission_id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid mission id", err).WithRequestID(requestID))
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondWithError(w, errors.NewValidationError("invalid multipart form or file too large", err).WithRequestID(requestID))
		return
	}

	var form imageUploadForm
	if err := formDecoder.Decode(&form, r.PostForm); err != nil {
		respondWithError(w, errors.NewValidationError("invalid image metadata", err).WithRequestID(requestID))
		return
	}
	if form.Timestamp.IsZero() {
		respondWithError(w, errors.NewValidationError("timestamp must be RFC 3339", nil).WithRequestID(requestID))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, errors.NewValidationError("image file is required", err).WithRequestID(requestID))
		return
	}
	defer file.Close()

	upload := ingestservice.ImageUpload{
		Timestamp: form.Timestamp,
		Latitude:  &form.Latitude,
		Longitude: &form.Longitude,
		CameraID:  form.CameraID,
	}

	image, err := h.svc.UploadImage(r.Context(), missionID, upload,
		header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusCreated, imageUploadResponse{
		ImageID:  image.ID,
		ImageURL: image.ImageURL,
	})
}

// @Summary Add a batch of predictions for an image
// @Description Bulk-insert object-detection results; detection ids are generated when absent
// @Tags images
// @Accept json
// @Produce json
// @Param image_id path int true "Image ID"
// @Param predictions body []models.ImagePrediction true "Prediction batch"
// @Success 200 {object} messageResponse
// @Failure 400 {object} errors.APIError
// @Failure 404 {object} errors.APIError
// @Router /images/{image_id}/predictions [post]
// @Security BearerAuth
func (h *ImageHandlers) AddPredictions(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	imageID, err := pathID(r, "image_id")
	if err != nil {
		respondWithError(w, errors.NewValidationError("invalid image id", err).WithRequestID(requestID))
		return
	}

	var predictions []models.ImagePrediction
	if err := json.NewDecoder(r.Body).Decode(&predictions); err != nil {
		respondWithError(w, errors.NewValidationError("invalid request body", err).WithRequestID(requestID))
		return
	}

	count, err := h.svc.AddPredictions(r.Context(), imageID, predictions)
	if err != nil {
		respondWithServiceError(w, err, requestID)
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("%d predictions added to image %d", count, imageID),
	})
}

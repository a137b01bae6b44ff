// FilePath: internal/models/models.image.go
package models

import "time"

// MissionImage is the metadata row for one captured image. The binary
// payload lives in object storage; ImageURL points at it.
type MissionImage struct {
	ID        int64     `json:"id" db:"id"`
	MissionID int64     `json:"mission_id" db:"mission_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Latitude  *float64  `json:"latitude" db:"latitude"`
	Longitude *float64  `json:"longitude" db:"longitude"`
	CameraID  *int64    `json:"camera_id" db:"camera_id"`
}

// ImagePrediction is one object-detection result for an image. The
// wire field for the detected class is "class"; DetectionID is
// generated server-side when the caller does not supply one.
type ImagePrediction struct {
	DetectionID string  `json:"detection_id,omitempty" db:"detection_id"`
	ImageID     int64   `json:"-" db:"image_id"`
	ClassName   string  `json:"class" db:"class_name"`
	Confidence  float64 `json:"confidence" db:"confidence"`
	X           float64 `json:"x" db:"x"`
	Y           float64 `json:"y" db:"y"`
	Width       float64 `json:"width" db:"width"`
	Height      float64 `json:"height" db:"height"`
}

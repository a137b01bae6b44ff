// FilePath: internal/models/models.mission.go
package models

import "time"

// Mission is one robot operational run with aggregate metadata.
// Missions are immutable once created; there are no update or delete
// endpoints. All numeric fields besides identifiers and times are
// optional and arrive as nulls when the robot did not report them.
type Mission struct {
	ID                     int64     `json:"id" db:"id"`
	RobotID                int64     `json:"robot_id" db:"robot_id"`
	FieldID                int64     `json:"field_id" db:"field_id"`
	UserID                 int64     `json:"user_id" db:"user_id"`
	MissionType            string    `json:"mission_type" db:"mission_type"`
	StartTime              time.Time `json:"start_time" db:"start_time"`
	EndTime                time.Time `json:"end_time" db:"end_time"`
	TravelledDistanceM     *float64  `json:"travelled_distance_m" db:"travelled_distance_m"`
	CoveredAreaM2          *float64  `json:"covered_area_m2" db:"covered_area_m2"`
	SprayedFluidL          *float64  `json:"sprayed_fluid_l" db:"sprayed_fluid_l"`
	TargetFluidDensityLpha *float64  `json:"target_fluid_density_lpha" db:"target_fluid_density_lpha"`
	SetpointPressureBar    *float64  `json:"setpoint_pressure_bar" db:"setpoint_pressure_bar"`
	CultivationMethod      *string   `json:"cultivation_method" db:"cultivation_method"`
	InferenceModel         *string   `json:"inference_model" db:"inference_model"`
	ContextCropID          *int64    `json:"context_crop_id" db:"context_crop_id"`
	TargetID               *int64    `json:"target_id" db:"target_id"`
	MinLatitude            *float64  `json:"min_latitude" db:"min_latitude"`
	MaxLatitude            *float64  `json:"max_latitude" db:"max_latitude"`
	MinLongitude           *float64  `json:"min_longitude" db:"min_longitude"`
	MaxLongitude           *float64  `json:"max_longitude" db:"max_longitude"`
	CropWeedCorrelation    *float64  `json:"crop_weed_correlation" db:"crop_weed_correlation"`
	WeedLiquidCorrelation  *float64  `json:"weed_liquid_correlation" db:"weed_liquid_correlation"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

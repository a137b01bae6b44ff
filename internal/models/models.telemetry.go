// FilePath: internal/models/models.telemetry.go
package models

import "time"

// RobotState is one timestamped telemetry sample within a mission.
// Samples are batch-inserted and append-only; retrieval is ordered by
// timestamp ascending.
type RobotState struct {
	MissionID         int64     `json:"-" db:"mission_id"`
	Timestamp         time.Time `json:"timestamp" db:"timestamp"`
	SystemState       *string   `json:"system_state" db:"system_state"`
	LatitudeRad       *float64  `json:"latitude_rad" db:"latitude_rad"`
	LongitudeRad      *float64  `json:"longitude_rad" db:"longitude_rad"`
	PoseXM            *float64  `json:"pose_x_m" db:"pose_x_m"`
	PoseYM            *float64  `json:"pose_y_m" db:"pose_y_m"`
	PoseThetaRad      *float64  `json:"pose_theta_rad" db:"pose_theta_rad"`
	SpeedXMps         *float64  `json:"speed_x_mps" db:"speed_x_mps"`
	SpeedYMps         *float64  `json:"speed_y_mps" db:"speed_y_mps"`
	SpeedOmegaRadps   *float64  `json:"speed_omega_radps" db:"speed_omega_radps"`
	Unit0FluidL       *float64  `json:"unit0_fluid_l" db:"unit0_fluid_l"`
	Unit1FluidL       *float64  `json:"unit1_fluid_l" db:"unit1_fluid_l"`
	Unit2FluidL       *float64  `json:"unit2_fluid_l" db:"unit2_fluid_l"`
	TargetCoveragePct *float64  `json:"target_coverage_percent" db:"target_coverage_percent"`
	AvoidCoveragePct  *float64  `json:"avoid_coverage_percent" db:"avoid_coverage_percent"`
}

// AgriEvent is a timestamped agronomic observation (e.g. a spray event)
// recorded during a mission.
type AgriEvent struct {
	MissionID  int64     `json:"-" db:"mission_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	Altitude   *float64  `json:"altitude" db:"altitude"`
	EventType  string    `json:"event_type" db:"event_type"`
	EventValue float64   `json:"event_value" db:"event_value"`
}

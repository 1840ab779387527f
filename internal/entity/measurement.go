package entity

import (
	"time"

	"ProjectVTO/pkg/vto"
)

type MeasurementSession struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// MeasurementSnapshot is the latest smoothed state of a session as published
// to the snapshot cache.
type MeasurementSnapshot struct {
	SessionID string          `json:"session_id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Frames    int             `json:"frames"`
	Result    vto.FrameResult `json:"result"`
}

type FittingRecord struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	SessionID       string    `db:"session_id" json:"session_id"`
	Label           string    `db:"label" json:"label"`
	PD              float64   `db:"pd" json:"pd"`
	PDLeft          float64   `db:"pd_left" json:"pd_left"`
	PDRight         float64   `db:"pd_right" json:"pd_right"`
	FrameWidth      float64   `db:"frame_width" json:"frame_width"`
	Bridge          float64   `db:"bridge" json:"bridge"`
	FaceHeight      float64   `db:"face_height" json:"face_height"`
	FaceShape       string    `db:"face_shape" json:"face_shape"`
	FaceSize        string    `db:"face_size" json:"face_size"`
	Recommendations []string  `db:"recommendations" json:"recommendations"`
	SnapshotURL     string    `db:"snapshot_url" json:"snapshot_url,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

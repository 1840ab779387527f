package measurement

import (
	"time"

	"ProjectVTO/internal/entity"
	"ProjectVTO/pkg/codec"
	"ProjectVTO/pkg/vto"
)

type FrameRequest struct {
	SessionID string `json:"session_id" msgpack:"session_id" validate:"required"`
	codec.LandmarkFrame
}

type FrameResponse struct {
	Data vto.FrameResult `json:"data"`
}

type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SnapshotResponse struct {
	Data entity.MeasurementSnapshot `json:"data"`
}

type FovResponse struct {
	Width float64 `json:"width"`
	FOV   float64 `json:"fov"`
}

type SaveFittingRequest struct {
	SessionID string `form:"session_id" json:"session_id" validate:"required"`
	Label     string `form:"label" json:"label" validate:"omitempty,max=100"`
}

type FittingResponse struct {
	Data entity.FittingRecord `json:"data"`
}

type FittingListResponse struct {
	Data []entity.FittingRecord `json:"data"`
}

// StreamError is written on a stream when a single frame cannot be handled;
// the stream stays open.
type StreamError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

package measurement

import (
	"ProjectVTO/pkg/response"
	"net/http"
)

var (
	ErrSessionNotFound       = response.NewCodedError(http.StatusNotFound, "SESSION_NOT_FOUND", "measurement session not found")
	ErrSnapshotNotFound      = response.NewCodedError(http.StatusNotFound, "SNAPSHOT_NOT_FOUND", "no snapshot for session")
	ErrInvalidLandmarks      = response.NewCodedError(http.StatusBadRequest, "INVALID_LANDMARKS", "face landmarks are invalid")
	ErrInvalidFrame          = response.NewCodedError(http.StatusBadRequest, "INVALID_FRAME", "frame could not be decoded")
	ErrInvalidWidth          = response.NewCodedError(http.StatusBadRequest, "INVALID_WIDTH", "width must be a non-negative number")
	ErrNoMeasurement         = response.NewCodedError(http.StatusConflict, "NO_MEASUREMENT", "session has no accepted measurement yet")
	ErrFittingNotFound       = response.NewCodedError(http.StatusNotFound, "FITTING_NOT_FOUND", "fitting record not found")
	ErrFittingNotOwned       = response.NewCodedError(http.StatusForbidden, "FITTING_NOT_OWNED", "fitting record does not belong to user")
	ErrInvalidSnapshotFile   = response.NewCodedError(http.StatusBadRequest, "INVALID_SNAPSHOT_FILE", "snapshot must be an image up to 5MB")
	ErrFailedToUploadFile    = response.NewCodedError(http.StatusInternalServerError, "UPLOAD_FAILED", "failed to upload snapshot")
	ErrDetectorUnavailable   = response.NewCodedError(http.StatusServiceUnavailable, "DETECTOR_UNAVAILABLE", "landmark detector unavailable")
	ErrInternalServerError   = response.NewError(http.StatusInternalServerError, "internal server error")
	ErrTooManySessionsActive = response.NewCodedError(http.StatusServiceUnavailable, "SESSION_LIMIT", "too many active measurement sessions")
)

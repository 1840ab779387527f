package measurementService

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/entity"
	"ProjectVTO/pkg/codec"
	contextPkg "ProjectVTO/pkg/context"
	"ProjectVTO/pkg/redis"
	"ProjectVTO/pkg/vto"
	websocketPkg "ProjectVTO/pkg/websocket"

	"github.com/sirupsen/logrus"
)

func (s *measurementService) ProcessFrame(ctx context.Context, sessionID string, frame codec.LandmarkFrame) (vto.FrameResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	sess, err := s.lookupSession(sessionID)
	if err != nil {
		return vto.FrameResult{}, err
	}

	face, err := frame.PrimaryFace()
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Rejected landmark frame")
		return vto.FrameResult{}, fmt.Errorf("%w: %v", measurement.ErrInvalidLandmarks, err)
	}

	return s.process(ctx, sess, face, frame.Options()), nil
}

func (s *measurementService) ProcessVideoFrame(ctx context.Context, sessionID string, image []byte, opts vto.FrameOptions) (vto.FrameResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	sess, err := s.lookupSession(sessionID)
	if err != nil {
		return vto.FrameResult{}, err
	}

	width, height, err := s.utils.FrameDimensions(image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("Rejected video frame")
		return vto.FrameResult{}, fmt.Errorf("%w: %v", measurement.ErrInvalidFrame, err)
	}
	if !opts.Viewport.Valid() {
		opts.Viewport = vto.Viewport{Width: width, Height: height}
	}

	if s.detector == nil {
		return vto.FrameResult{}, measurement.ErrDetectorUnavailable
	}

	detected, err := s.detector.DetectLandmarks(ctx, image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": sessionID,
			"error":      err.Error(),
		}).Error("Landmark detection failed")

		if errors.Is(err, websocketPkg.ErrNotConnected) || errors.Is(err, context.DeadlineExceeded) {
			return vto.FrameResult{}, measurement.ErrDetectorUnavailable
		}
		return vto.FrameResult{}, measurement.ErrInternalServerError
	}

	var face *vto.FrameLandmarks
	if len(detected.Faces) > 0 {
		face, err = vto.NewFrameLandmarks(detected.Faces[0])
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			}).Error("Detector returned an unusable face mesh")
			return vto.FrameResult{}, fmt.Errorf("%w: %v", measurement.ErrInvalidLandmarks, err)
		}
	}

	return s.process(ctx, sess, face, opts), nil
}

func (s *measurementService) process(ctx context.Context, sess *session, face *vto.FrameLandmarks, opts vto.FrameOptions) vto.FrameResult {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := s.now()
	sess.lastSeen = now

	result := sess.processor.Process(face, opts)

	if result.FaceDetected && now.Sub(sess.lastPublished) >= s.cfg.SnapshotInterval {
		sess.lastPublished = now
		s.publishSnapshot(ctx, entity.MeasurementSnapshot{
			SessionID: sess.id,
			UpdatedAt: now,
			Frames:    sess.processor.Frames(),
			Result:    result,
		})
	}

	return result
}

func (s *measurementService) publishSnapshot(ctx context.Context, snapshot entity.MeasurementSnapshot) {
	if s.redis == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.redis.SetSnapshot(ctx, snapshot.SessionID, snapshot, s.cfg.SnapshotTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": snapshot.SessionID,
			"error":      err.Error(),
		}).Warn("Failed to publish measurement snapshot")
	}
}

// GetSnapshot reads the live session when it is held by this instance, since
// the cached copy lags by up to one snapshot interval. Sessions owned by
// another instance, or lost in a restart, are served from the shared cache.
func (s *measurementService) GetSnapshot(ctx context.Context, sessionID string) (entity.MeasurementSnapshot, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if sess, err := s.lookupSession(sessionID); err == nil {
		sess.mu.Lock()
		defer sess.mu.Unlock()

		return entity.MeasurementSnapshot{
			SessionID: sess.id,
			UpdatedAt: sess.lastSeen,
			Frames:    sess.processor.Frames(),
			Result:    sess.processor.Last(),
		}, nil
	}

	if s.redis == nil {
		return entity.MeasurementSnapshot{}, measurement.ErrSnapshotNotFound
	}

	var snapshot entity.MeasurementSnapshot
	if err := s.redis.GetSnapshot(ctx, sessionID, &snapshot); err != nil {
		if !errors.Is(err, redis.ErrNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"session_id": sessionID,
				"error":      err.Error(),
			}).Warn("Snapshot cache unavailable")
		}
		return entity.MeasurementSnapshot{}, measurement.ErrSnapshotNotFound
	}

	return snapshot, nil
}

package measurementService

import (
	"context"
	"errors"
	"mime/multipart"

	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/entity"
	contextPkg "ProjectVTO/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *measurementService) SaveFitting(ctx context.Context, userID string, req measurement.SaveFittingRequest, snapshotFile *multipart.FileHeader) (entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	snapshot, err := s.GetSnapshot(ctx, req.SessionID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"session_id": req.SessionID,
		}).Warn("No snapshot to save")
		return entity.FittingRecord{}, err
	}
	if !snapshot.Result.HasMeasurement() {
		return entity.FittingRecord{}, measurement.ErrNoMeasurement
	}

	var snapshotURL string
	if snapshotFile != nil {
		if s.s3 == nil {
			return entity.FittingRecord{}, measurement.ErrFailedToUploadFile
		}
		if err := s.utils.ValidateImageFile(snapshotFile); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Invalid snapshot file")
			return entity.FittingRecord{}, measurement.ErrInvalidSnapshotFile
		}

		snapshotURL, err = s.s3.UploadFile(snapshotFile, "fittings/"+userID)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to upload snapshot")
			return entity.FittingRecord{}, measurement.ErrFailedToUploadFile
		}
	}

	now := s.now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		s.discardUpload(requestID, snapshotURL)
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}

	result := snapshot.Result
	fitting := entity.FittingRecord{
		ID:              id,
		UserID:          userID,
		SessionID:       req.SessionID,
		Label:           req.Label,
		PD:              result.DetectedPD,
		PDLeft:          result.PDLeft,
		PDRight:         result.PDRight,
		FrameWidth:      result.Width,
		Bridge:          result.Bridge,
		FaceHeight:      result.Height,
		FaceShape:       string(result.FaceShape),
		FaceSize:        string(result.FaceSize),
		Recommendations: result.Recommendations,
		SnapshotURL:     snapshotURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	repo, err := s.measurementRepository.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		s.discardUpload(requestID, snapshotURL)
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}
	defer repo.Rollback()

	if err := repo.Fitting.CreateFitting(ctx, fitting); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create fitting record")
		s.discardUpload(requestID, snapshotURL)
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		s.discardUpload(requestID, snapshotURL)
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"fitting_id": id,
		"user_id":    userID,
	}).Info("Fitting saved")

	return fitting, nil
}

func (s *measurementService) GetFittingsByUserID(ctx context.Context, userID string) ([]entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, measurement.ErrInternalServerError
	}

	fittings, err := repo.Fitting.GetFittingsByUserID(ctx, userID)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		}).Error("Failed to get fittings")
		return nil, measurement.ErrInternalServerError
	}

	for i := range fittings {
		fittings[i].SnapshotURL = s.presign(requestID, fittings[i].SnapshotURL)
	}

	return fittings, nil
}

// GetFittingByID reports records owned by another user as not found.
func (s *measurementService) GetFittingByID(ctx context.Context, id string, userID string) (entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	fitting, err := s.loadFitting(ctx, id)
	if err != nil {
		return entity.FittingRecord{}, err
	}
	if fitting.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"fitting_id": id,
			"user_id":    userID,
		}).Warn("Fitting requested by non-owner")
		return entity.FittingRecord{}, measurement.ErrFittingNotFound
	}

	fitting.SnapshotURL = s.presign(requestID, fitting.SnapshotURL)
	return fitting, nil
}

func (s *measurementService) DeleteFitting(ctx context.Context, id string, userID string) error {
	requestID := contextPkg.GetRequestID(ctx)

	fitting, err := s.loadFitting(ctx, id)
	if err != nil {
		return err
	}
	if fitting.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"fitting_id": id,
			"user_id":    userID,
		}).Warn("Fitting delete by non-owner")
		return measurement.ErrFittingNotOwned
	}

	repo, err := s.measurementRepository.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return measurement.ErrInternalServerError
	}
	defer repo.Rollback()

	if err := repo.Fitting.DeleteFitting(ctx, id); err != nil {
		if errors.Is(err, measurement.ErrFittingNotFound) {
			return err
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"fitting_id": id,
			"error":      err.Error(),
		}).Error("Failed to delete fitting")
		return measurement.ErrInternalServerError
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return measurement.ErrInternalServerError
	}

	s.discardUpload(requestID, fitting.SnapshotURL)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"fitting_id": id,
	}).Info("Fitting deleted")

	return nil
}

func (s *measurementService) loadFitting(ctx context.Context, id string) (entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.measurementRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}

	fitting, err := repo.Fitting.GetFittingByID(ctx, id)
	if err != nil {
		if errors.Is(err, measurement.ErrFittingNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"fitting_id": id,
			}).Warn("Fitting not found")
			return entity.FittingRecord{}, err
		}
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"fitting_id": id,
			"error":      err.Error(),
		}).Error("Failed to get fitting")
		return entity.FittingRecord{}, measurement.ErrInternalServerError
	}

	return fitting, nil
}

func (s *measurementService) presign(requestID, fileURL string) string {
	if fileURL == "" || s.s3 == nil {
		return fileURL
	}

	presigned, err := s.s3.PresignUrl(fileURL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign snapshot url")
		return fileURL
	}
	return presigned
}

func (s *measurementService) discardUpload(requestID, fileURL string) {
	if fileURL == "" || s.s3 == nil {
		return
	}

	if err := s.s3.DeleteFile(fileURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to delete snapshot file")
	}
}

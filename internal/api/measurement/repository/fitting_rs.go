package measurementRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/entity"
	contextPkg "ProjectVTO/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type FittingRecordDB struct {
	ID              sql.NullString  `db:"id"`
	UserID          sql.NullString  `db:"user_id"`
	SessionID       sql.NullString  `db:"session_id"`
	Label           sql.NullString  `db:"label"`
	PD              sql.NullFloat64 `db:"pd"`
	PDLeft          sql.NullFloat64 `db:"pd_left"`
	PDRight         sql.NullFloat64 `db:"pd_right"`
	FrameWidth      sql.NullFloat64 `db:"frame_width"`
	Bridge          sql.NullFloat64 `db:"bridge"`
	FaceHeight      sql.NullFloat64 `db:"face_height"`
	FaceShape       sql.NullString  `db:"face_shape"`
	FaceSize        sql.NullString  `db:"face_size"`
	Recommendations pq.StringArray  `db:"recommendations"`
	SnapshotURL     sql.NullString  `db:"snapshot_url"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r *fittingRepository) CreateFitting(c context.Context, fitting entity.FittingRecord) error {
	requestID := contextPkg.GetRequestID(c)
	now := time.Now()

	argsKV := map[string]interface{}{
		"id":              fitting.ID,
		"user_id":         fitting.UserID,
		"session_id":      fitting.SessionID,
		"label":           fitting.Label,
		"pd":              fitting.PD,
		"pd_left":         fitting.PDLeft,
		"pd_right":        fitting.PDRight,
		"frame_width":     fitting.FrameWidth,
		"bridge":          fitting.Bridge,
		"face_height":     fitting.FaceHeight,
		"face_shape":      fitting.FaceShape,
		"face_size":       fitting.FaceSize,
		"recommendations": pq.StringArray(fitting.Recommendations),
		"snapshot_url":    sql.NullString{String: fitting.SnapshotURL, Valid: fitting.SnapshotURL != ""},
		"created_at":      now,
		"updated_at":      now,
	}

	query, args, err := sqlx.Named(queryCreateFitting, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateFitting")
		return err
	}
	query = r.q.Rebind(query)

	if _, err = r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating fitting record")
		return err
	}

	return nil
}

func (r *fittingRepository) GetFittingByID(c context.Context, id string) (entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var fitting FittingRecordDB

	query, args, err := sqlx.Named(queryGetFittingByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFittingByID named query preparation err")
		return entity.FittingRecord{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&fitting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"fitting_id": id,
			}).Warn("GetFittingByID no rows found")
			return entity.FittingRecord{}, measurement.ErrFittingNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFittingByID execution err")
		return entity.FittingRecord{}, err
	}

	return makeFittingRecord(fitting), nil
}

func (r *fittingRepository) GetFittingsByUserID(c context.Context, userID string) ([]entity.FittingRecord, error) {
	requestID := contextPkg.GetRequestID(c)
	var fittings []FittingRecordDB

	query, args, err := sqlx.Named(queryGetFittingsByUserID, map[string]interface{}{"user_id": userID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFittingsByUserID named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &fittings, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetFittingsByUserID execution err")
		return nil, err
	}

	result := make([]entity.FittingRecord, 0, len(fittings))
	for _, f := range fittings {
		result = append(result, makeFittingRecord(f))
	}

	return result, nil
}

func (r *fittingRepository) DeleteFitting(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	query, args, err := sqlx.Named(queryDeleteFitting, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteFitting named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(c, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteFitting execution err")
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return measurement.ErrFittingNotFound
	}

	return nil
}

func makeFittingRecord(f FittingRecordDB) entity.FittingRecord {
	recommendations := []string(f.Recommendations)
	if recommendations == nil {
		recommendations = []string{}
	}

	return entity.FittingRecord{
		ID:              f.ID.String,
		UserID:          f.UserID.String,
		SessionID:       f.SessionID.String,
		Label:           f.Label.String,
		PD:              f.PD.Float64,
		PDLeft:          f.PDLeft.Float64,
		PDRight:         f.PDRight.Float64,
		FrameWidth:      f.FrameWidth.Float64,
		Bridge:          f.Bridge.Float64,
		FaceHeight:      f.FaceHeight.Float64,
		FaceShape:       f.FaceShape.String,
		FaceSize:        f.FaceSize.String,
		Recommendations: recommendations,
		SnapshotURL:     f.SnapshotURL.String,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

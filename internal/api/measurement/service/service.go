package measurementService

import (
	"context"
	"mime/multipart"
	"time"

	"ProjectVTO/internal/api/measurement"
	measurementRepository "ProjectVTO/internal/api/measurement/repository"
	"ProjectVTO/internal/entity"
	"ProjectVTO/pkg/codec"
	"ProjectVTO/pkg/redis"
	"ProjectVTO/pkg/s3"
	"ProjectVTO/pkg/utils"
	"ProjectVTO/pkg/vto"
	websocketPkg "ProjectVTO/pkg/websocket"

	"github.com/sirupsen/logrus"
)

type IMeasurementService interface {
	CreateSession(ctx context.Context) (entity.MeasurementSession, error)
	CloseSession(ctx context.Context, sessionID string) error
	ProcessFrame(ctx context.Context, sessionID string, frame codec.LandmarkFrame) (vto.FrameResult, error)
	ProcessVideoFrame(ctx context.Context, sessionID string, image []byte, opts vto.FrameOptions) (vto.FrameResult, error)
	GetSnapshot(ctx context.Context, sessionID string) (entity.MeasurementSnapshot, error)
	FieldOfView(width float64) float64

	SaveFitting(ctx context.Context, userID string, req measurement.SaveFittingRequest, snapshot *multipart.FileHeader) (entity.FittingRecord, error)
	GetFittingsByUserID(ctx context.Context, userID string) ([]entity.FittingRecord, error)
	GetFittingByID(ctx context.Context, id string, userID string) (entity.FittingRecord, error)
	DeleteFitting(ctx context.Context, id string, userID string) error

	Close()
}

type Config struct {
	VTO              vto.Config
	IdleTimeout      time.Duration
	SnapshotTTL      time.Duration
	SnapshotInterval time.Duration
	MaxSessions      int
}

func DefaultConfig() Config {
	return Config{
		VTO:              vto.DefaultConfig(),
		IdleTimeout:      10 * time.Minute,
		SnapshotTTL:      30 * time.Minute,
		SnapshotInterval: 500 * time.Millisecond,
		MaxSessions:      1000,
	}
}

type measurementService struct {
	log                   *logrus.Logger
	measurementRepository measurementRepository.Repository
	redis                 redis.IRedis
	detector              websocketPkg.IWebsocket
	s3                    s3.ItfS3
	utils                 utils.IUtils
	cfg                   Config
	sessions              *sessionRegistry
	now                   func() time.Time
}

func NewMeasurementService(
	log *logrus.Logger,
	mr measurementRepository.Repository,
	redis redis.IRedis,
	detector websocketPkg.IWebsocket,
	s3 s3.ItfS3,
	utils utils.IUtils,
	cfg Config,
) IMeasurementService {
	s := &measurementService{
		log:                   log,
		measurementRepository: mr,
		redis:                 redis,
		detector:              detector,
		s3:                    s3,
		utils:                 utils,
		cfg:                   cfg,
		now:                   time.Now,
	}
	s.sessions = newSessionRegistry(cfg.MaxSessions, s.now)
	s.sessions.startJanitor(cfg.IdleTimeout, log)

	return s
}

func (s *measurementService) Close() {
	s.sessions.stopJanitor()
}

func (s *measurementService) FieldOfView(width float64) float64 {
	return vto.FieldOfView(width)
}

package measurementService

import (
	"context"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"ProjectVTO/internal/api/measurement"
	measurementRepository "ProjectVTO/internal/api/measurement/repository"
	"ProjectVTO/internal/entity"
	"ProjectVTO/pkg/codec"
	"ProjectVTO/pkg/geometry"
	"ProjectVTO/pkg/redis"
	"ProjectVTO/pkg/utils"
	"ProjectVTO/pkg/vto"
	websocketPkg "ProjectVTO/pkg/websocket"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// testFace is a symmetric, camera-facing face that measures a PD of 63.44 mm
// and a frame width of 122 mm.
func testFace() []geometry.Point {
	points := make([]geometry.Point, vto.NumLandmarks)

	points[vto.LeftIrisInner] = geometry.Point{X: 0.40, Y: 0.5}
	points[vto.LeftIrisOuter] = geometry.Point{X: 0.45, Y: 0.5}
	points[vto.RightIrisInner] = geometry.Point{X: 0.60, Y: 0.5}
	points[vto.RightIrisOuter] = geometry.Point{X: 0.55, Y: 0.5}
	points[vto.LeftIrisCenter] = geometry.Point{X: 0.37, Y: 0.5}
	points[vto.RightIrisCenter] = geometry.Point{X: 0.63, Y: 0.5}
	points[vto.LeftTemple] = geometry.Point{X: 0.25, Y: 0.45}
	points[vto.RightTemple] = geometry.Point{X: 0.75, Y: 0.45}
	points[vto.LeftBridge] = geometry.Point{X: 0.47, Y: 0.5}
	points[vto.RightBridge] = geometry.Point{X: 0.53, Y: 0.5}
	points[vto.Forehead] = geometry.Point{X: 0.5, Y: 0.2}
	points[vto.Chin] = geometry.Point{X: 0.5, Y: 0.8}
	points[vto.LeftCheek] = geometry.Point{X: 0.29, Y: 0.5}
	points[vto.RightCheek] = geometry.Point{X: 0.71, Y: 0.5}
	points[vto.NoseTip] = geometry.Point{X: 0.5, Y: 0.55, Z: -0.05}
	points[vto.LeftEyeOuter] = geometry.Point{X: 0.35, Y: 0.45}
	points[vto.RightEyeOuter] = geometry.Point{X: 0.65, Y: 0.45}
	points[vto.Anchor] = geometry.Point{X: 0.5, Y: 0.4, Z: -0.05}

	return points
}

func testFrame() codec.LandmarkFrame {
	return codec.LandmarkFrame{
		Faces:         [][]geometry.Point{testFace()},
		Viewport:      vto.Viewport{Width: 1280, Height: 720},
		ClassifyShape: true,
	}
}

type fakeRedis struct {
	mu        sync.Mutex
	snapshots map[string]entity.MeasurementSnapshot
	sets      int
	err       error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{snapshots: make(map[string]entity.MeasurementSnapshot)}
}

func (r *fakeRedis) SetSnapshot(_ context.Context, sessionID string, snapshot any, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sets++
	r.snapshots[sessionID] = snapshot.(entity.MeasurementSnapshot)
	return nil
}

func (r *fakeRedis) GetSnapshot(_ context.Context, sessionID string, dest any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	snapshot, ok := r.snapshots[sessionID]
	if !ok {
		return redis.ErrNotFound
	}
	*dest.(*entity.MeasurementSnapshot) = snapshot
	return nil
}

func (r *fakeRedis) DeleteSnapshot(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, sessionID)
	return nil
}

func (r *fakeRedis) Ping(context.Context) error { return r.err }

type fakeFittingStore struct {
	mu       sync.Mutex
	fittings map[string]entity.FittingRecord
	err      error
}

func (f *fakeFittingStore) CreateFitting(_ context.Context, fitting entity.FittingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.fittings[fitting.ID] = fitting
	return nil
}

func (f *fakeFittingStore) GetFittingByID(_ context.Context, id string) (entity.FittingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fitting, ok := f.fittings[id]
	if !ok {
		return entity.FittingRecord{}, measurement.ErrFittingNotFound
	}
	return fitting, nil
}

func (f *fakeFittingStore) GetFittingsByUserID(_ context.Context, userID string) ([]entity.FittingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.FittingRecord
	for _, fitting := range f.fittings {
		if fitting.UserID == userID {
			out = append(out, fitting)
		}
	}
	return out, nil
}

func (f *fakeFittingStore) DeleteFitting(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.fittings[id]; !ok {
		return measurement.ErrFittingNotFound
	}
	delete(f.fittings, id)
	return nil
}

type fakeRepository struct {
	store *fakeFittingStore
}

func (r *fakeRepository) NewClient(bool) (measurementRepository.Client, error) {
	return measurementRepository.Client{
		Fitting:  r.store,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

type fakeS3 struct {
	uploads []string
	deleted []string
	err     error
}

func (s *fakeS3) UploadFile(file *multipart.FileHeader, prefix string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	url := "https://bucket.s3.amazonaws.com/" + prefix + "/" + file.Filename
	s.uploads = append(s.uploads, url)
	return url, nil
}

func (s *fakeS3) PresignUrl(fileUrl string) (string, error) {
	return fileUrl + "?signed", nil
}

func (s *fakeS3) DeleteFile(fileUrl string) error {
	s.deleted = append(s.deleted, fileUrl)
	return nil
}

type fakeDetector struct {
	result *websocketPkg.DetectorResult
	err    error
	calls  int
}

func (d *fakeDetector) DetectLandmarks(context.Context, []byte) (*websocketPkg.DetectorResult, error) {
	d.calls++
	return d.result, d.err
}

func (d *fakeDetector) IsConnected() bool { return d.err == nil }
func (d *fakeDetector) Reconnect() error  { return nil }
func (d *fakeDetector) CloseConnections() {}

type fakeUtils struct {
	utils.IUtils
	width, height int
	frameErr      error
}

func (u *fakeUtils) FrameDimensions([]byte) (int, int, error) {
	return u.width, u.height, u.frameErr
}

type fixture struct {
	svc      *measurementService
	redis    *fakeRedis
	store    *fakeFittingStore
	s3       *fakeS3
	detector *fakeDetector
	utils    *fakeUtils
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	cfg := DefaultConfig()
	cfg.IdleTimeout = 0
	cfg.SnapshotInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	f := &fixture{
		redis:    newFakeRedis(),
		store:    &fakeFittingStore{fittings: make(map[string]entity.FittingRecord)},
		s3:       &fakeS3{},
		detector: &fakeDetector{},
		utils:    &fakeUtils{IUtils: utils.New(), width: 640, height: 480},
	}

	svc := NewMeasurementService(quietLogger(), &fakeRepository{store: f.store}, f.redis, f.detector, f.s3, f.utils, cfg)
	t.Cleanup(svc.Close)
	f.svc = svc.(*measurementService)

	return f
}

func imageHeader(name string) *multipart.FileHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Type", "image/png")
	return &multipart.FileHeader{Filename: name, Header: h, Size: 1024}
}

func TestProcessFrameMeasuresAndPublishes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, err := f.svc.CreateSession(ctx)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	result, err := f.svc.ProcessFrame(ctx, sess.ID, testFrame())
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if !result.FaceDetected || result.Stale {
		t.Fatalf("result = %+v, want a fresh detection", result)
	}
	if math.Abs(result.DetectedPD-63.44) > 1e-6 {
		t.Errorf("DetectedPD = %v, want 63.44", result.DetectedPD)
	}
	if result.FaceShape != vto.ShapeRound {
		t.Errorf("FaceShape = %q, want %q", result.FaceShape, vto.ShapeRound)
	}

	snapshot, err := f.svc.GetSnapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snapshot.Frames != 1 || snapshot.Result.DetectedPD != result.DetectedPD {
		t.Errorf("snapshot = %+v", snapshot)
	}
	if f.redis.sets != 1 {
		t.Errorf("snapshot published %d times, want 1", f.redis.sets)
	}
}

func TestProcessFrameThrottlesSnapshots(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.SnapshotInterval = time.Hour })
	ctx := context.Background()

	sess, _ := f.svc.CreateSession(ctx)
	for i := 0; i < 5; i++ {
		if _, err := f.svc.ProcessFrame(ctx, sess.ID, testFrame()); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
	}

	if f.redis.sets != 1 {
		t.Errorf("snapshot published %d times, want 1", f.redis.sets)
	}
}

func TestProcessFrameErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.ProcessFrame(ctx, "missing", testFrame()); !errors.Is(err, measurement.ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want ErrSessionNotFound", err)
	}

	sess, _ := f.svc.CreateSession(ctx)

	short := testFrame()
	short.Faces[0] = short.Faces[0][:468]
	if _, err := f.svc.ProcessFrame(ctx, sess.ID, short); !errors.Is(err, measurement.ErrInvalidLandmarks) {
		t.Errorf("short face error = %v, want ErrInvalidLandmarks", err)
	}

	nonFinite := testFrame()
	nonFinite.Faces[0][vto.Chin].Y = math.NaN()
	if _, err := f.svc.ProcessFrame(ctx, sess.ID, nonFinite); !errors.Is(err, measurement.ErrInvalidLandmarks) {
		t.Errorf("NaN landmark error = %v, want ErrInvalidLandmarks", err)
	}
}

func TestProcessFrameWithoutFaceKeepsState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, _ := f.svc.CreateSession(ctx)
	first, _ := f.svc.ProcessFrame(ctx, sess.ID, testFrame())

	empty := testFrame()
	empty.Faces = nil
	result, err := f.svc.ProcessFrame(ctx, sess.ID, empty)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if result.FaceDetected || !result.Stale {
		t.Errorf("result = %+v, want stale without face", result)
	}
	if result.DetectedPD != first.DetectedPD {
		t.Errorf("DetectedPD = %v, want %v", result.DetectedPD, first.DetectedPD)
	}
}

func TestGetSnapshotFallsBackToSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, _ := f.svc.CreateSession(ctx)
	f.redis.err = errors.New("connection refused")

	if _, err := f.svc.ProcessFrame(ctx, sess.ID, testFrame()); err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}

	snapshot, err := f.svc.GetSnapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snapshot.SessionID != sess.ID || snapshot.Frames != 1 {
		t.Errorf("snapshot = %+v", snapshot)
	}

	if _, err := f.svc.GetSnapshot(ctx, "missing"); !errors.Is(err, measurement.ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot(missing) error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestGetSnapshotPrefersLiveSession(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.SnapshotInterval = time.Hour })
	ctx := context.Background()

	sess, _ := f.svc.CreateSession(ctx)
	for i := 0; i < 3; i++ {
		if _, err := f.svc.ProcessFrame(ctx, sess.ID, testFrame()); err != nil {
			t.Fatalf("ProcessFrame() error = %v", err)
		}
	}
	if cached := f.redis.snapshots[sess.ID]; cached.Frames != 1 {
		t.Fatalf("cached frames = %d, want 1", cached.Frames)
	}

	snapshot, err := f.svc.GetSnapshot(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snapshot.Frames != 3 {
		t.Errorf("Frames = %d, want 3 from the live session", snapshot.Frames)
	}
}

func TestGetSnapshotFromCacheForRemoteSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.redis.snapshots["remote"] = entity.MeasurementSnapshot{SessionID: "remote", Frames: 7}

	snapshot, err := f.svc.GetSnapshot(ctx, "remote")
	if err != nil {
		t.Fatalf("GetSnapshot() error = %v", err)
	}
	if snapshot.SessionID != "remote" || snapshot.Frames != 7 {
		t.Errorf("snapshot = %+v", snapshot)
	}

	f.redis.err = errors.New("connection refused")
	if _, err := f.svc.GetSnapshot(ctx, "remote"); !errors.Is(err, measurement.ErrSnapshotNotFound) {
		t.Errorf("GetSnapshot() with cache down error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, _ := f.svc.CreateSession(ctx)
	_, _ = f.svc.ProcessFrame(ctx, sess.ID, testFrame())

	if err := f.svc.CloseSession(ctx, sess.ID); err != nil {
		t.Fatalf("CloseSession() error = %v", err)
	}
	if _, ok := f.redis.snapshots[sess.ID]; ok {
		t.Error("snapshot still cached after close")
	}
	if err := f.svc.CloseSession(ctx, sess.ID); !errors.Is(err, measurement.ErrSessionNotFound) {
		t.Errorf("second CloseSession() error = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionLimit(t *testing.T) {
	f := newFixture(t, func(cfg *Config) { cfg.MaxSessions = 2 })
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.CreateSession(ctx); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}
	if _, err := f.svc.CreateSession(ctx); !errors.Is(err, measurement.ErrTooManySessionsActive) {
		t.Errorf("CreateSession() error = %v, want ErrTooManySessionsActive", err)
	}
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	r := newSessionRegistry(0, func() time.Time { return now })

	_ = r.add(&session{id: "old", lastSeen: now.Add(-time.Hour)})
	_ = r.add(&session{id: "fresh", lastSeen: now.Add(-time.Second)})

	evicted := r.evictIdle(10 * time.Minute)
	if len(evicted) != 1 || evicted[0] != "old" {
		t.Errorf("evictIdle() = %v, want [old]", evicted)
	}
	if _, ok := r.get("fresh"); !ok {
		t.Error("fresh session evicted")
	}
}

func TestProcessVideoFrame(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess, _ := f.svc.CreateSession(ctx)

	f.detector.result = &websocketPkg.DetectorResult{Faces: [][]geometry.Point{testFace()}}

	result, err := f.svc.ProcessVideoFrame(ctx, sess.ID, []byte("jpeg"), vto.FrameOptions{TryOn: true})
	if err != nil {
		t.Fatalf("ProcessVideoFrame() error = %v", err)
	}
	if !result.FaceDetected {
		t.Error("FaceDetected = false, want true")
	}
	if result.FOV != vto.FieldOfView(640) {
		t.Errorf("FOV = %v, want the value for the frame width", result.FOV)
	}

	f.detector.err = websocketPkg.ErrNotConnected
	if _, err := f.svc.ProcessVideoFrame(ctx, sess.ID, []byte("jpeg"), vto.FrameOptions{}); !errors.Is(err, measurement.ErrDetectorUnavailable) {
		t.Errorf("disconnected detector error = %v, want ErrDetectorUnavailable", err)
	}

	f.utils.frameErr = utils.ErrUnknownEncoding
	calls := f.detector.calls
	if _, err := f.svc.ProcessVideoFrame(ctx, sess.ID, []byte("gif"), vto.FrameOptions{}); !errors.Is(err, measurement.ErrInvalidFrame) {
		t.Errorf("bad frame error = %v, want ErrInvalidFrame", err)
	}
	if f.detector.calls != calls {
		t.Error("detector called for an undecodable frame")
	}
}

func TestSaveFitting(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess, _ := f.svc.CreateSession(ctx)

	req := measurement.SaveFittingRequest{SessionID: sess.ID, Label: "reading"}
	if _, err := f.svc.SaveFitting(ctx, "user-1", req, nil); !errors.Is(err, measurement.ErrNoMeasurement) {
		t.Errorf("SaveFitting() before any frame error = %v, want ErrNoMeasurement", err)
	}

	_, _ = f.svc.ProcessFrame(ctx, sess.ID, testFrame())

	fitting, err := f.svc.SaveFitting(ctx, "user-1", req, imageHeader("snap.png"))
	if err != nil {
		t.Fatalf("SaveFitting() error = %v", err)
	}
	if fitting.UserID != "user-1" || fitting.Label != "reading" {
		t.Errorf("fitting = %+v", fitting)
	}
	if math.Abs(fitting.PD-63.44) > 1e-6 || fitting.FaceShape != string(vto.ShapeRound) {
		t.Errorf("fitting measurements = %+v", fitting)
	}
	if len(f.s3.uploads) != 1 || fitting.SnapshotURL != f.s3.uploads[0] {
		t.Errorf("uploads = %v, snapshot url = %q", f.s3.uploads, fitting.SnapshotURL)
	}

	got, err := f.svc.GetFittingByID(ctx, fitting.ID, "user-1")
	if err != nil {
		t.Fatalf("GetFittingByID() error = %v", err)
	}
	if got.SnapshotURL != fitting.SnapshotURL+"?signed" {
		t.Errorf("SnapshotURL = %q, want presigned", got.SnapshotURL)
	}

	list, err := f.svc.GetFittingsByUserID(ctx, "user-1")
	if err != nil || len(list) != 1 {
		t.Errorf("GetFittingsByUserID() = %v, %v", list, err)
	}
}

func TestSaveFittingRemovesUploadOnInsertFailure(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	sess, _ := f.svc.CreateSession(ctx)
	_, _ = f.svc.ProcessFrame(ctx, sess.ID, testFrame())

	f.store.err = errors.New("insert failed")

	_, err := f.svc.SaveFitting(ctx, "user-1", measurement.SaveFittingRequest{SessionID: sess.ID}, imageHeader("snap.png"))
	if !errors.Is(err, measurement.ErrInternalServerError) {
		t.Errorf("SaveFitting() error = %v, want ErrInternalServerError", err)
	}
	if len(f.s3.deleted) != 1 {
		t.Errorf("deleted = %v, want the orphaned upload", f.s3.deleted)
	}
}

func TestFittingOwnership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.store.fittings["f1"] = entity.FittingRecord{ID: "f1", UserID: "owner", SnapshotURL: "https://bucket/s.png"}

	if _, err := f.svc.GetFittingByID(ctx, "f1", "intruder"); !errors.Is(err, measurement.ErrFittingNotFound) {
		t.Errorf("GetFittingByID() error = %v, want ErrFittingNotFound", err)
	}
	if err := f.svc.DeleteFitting(ctx, "f1", "intruder"); !errors.Is(err, measurement.ErrFittingNotOwned) {
		t.Errorf("DeleteFitting() error = %v, want ErrFittingNotOwned", err)
	}

	if err := f.svc.DeleteFitting(ctx, "f1", "owner"); err != nil {
		t.Fatalf("DeleteFitting() error = %v", err)
	}
	if len(f.s3.deleted) != 1 || f.s3.deleted[0] != "https://bucket/s.png" {
		t.Errorf("deleted = %v", f.s3.deleted)
	}
	if err := f.svc.DeleteFitting(ctx, "f1", "owner"); !errors.Is(err, measurement.ErrFittingNotFound) {
		t.Errorf("second DeleteFitting() error = %v, want ErrFittingNotFound", err)
	}
}

func TestFieldOfView(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.svc.FieldOfView(math.NaN()); got != 40 {
		t.Errorf("FieldOfView(NaN) = %v, want 40", got)
	}
}

package measurementRepository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"ProjectVTO/database/postgres"
	"ProjectVTO/internal/api/measurement"
	"ProjectVTO/internal/entity"

	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type noopLogger struct{}

func (noopLogger) Printf(string, ...interface{}) {}

func TestFittingRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Skipf("Docker not available: %v", err)
	}

	pgContainer, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("vto_test"),
		pgmodule.WithUsername("user"),
		pgmodule.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	db, err := postgres.Open(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := New(db, logger).NewClient(false)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	record := entity.FittingRecord{
		ID:              "01HZXTESTFITTING0000000001",
		UserID:          "user-1",
		SessionID:       "session-1",
		Label:           "first try",
		PD:              63.4,
		PDLeft:          31.8,
		PDRight:         31.6,
		FrameWidth:      122,
		FaceShape:       "Round",
		FaceSize:        "Medium",
		Recommendations: []string{"Rectangle", "Square"},
	}

	if err := client.Fitting.CreateFitting(ctx, record); err != nil {
		t.Fatalf("CreateFitting() error = %v", err)
	}

	got, err := client.Fitting.GetFittingByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetFittingByID() error = %v", err)
	}
	if got.PD != record.PD || got.FaceShape != record.FaceShape || len(got.Recommendations) != 2 {
		t.Errorf("GetFittingByID() = %+v", got)
	}
	if got.SnapshotURL != "" {
		t.Errorf("SnapshotURL = %q, want empty", got.SnapshotURL)
	}

	list, err := client.Fitting.GetFittingsByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetFittingsByUserID() error = %v", err)
	}
	if len(list) != 1 || list[0].ID != record.ID {
		t.Errorf("GetFittingsByUserID() = %+v", list)
	}

	if err := client.Fitting.DeleteFitting(ctx, record.ID); err != nil {
		t.Fatalf("DeleteFitting() error = %v", err)
	}

	if _, err := client.Fitting.GetFittingByID(ctx, record.ID); !errors.Is(err, measurement.ErrFittingNotFound) {
		t.Errorf("GetFittingByID() after delete error = %v, want ErrFittingNotFound", err)
	}
	if err := client.Fitting.DeleteFitting(ctx, record.ID); !errors.Is(err, measurement.ErrFittingNotFound) {
		t.Errorf("DeleteFitting() twice error = %v, want ErrFittingNotFound", err)
	}
}

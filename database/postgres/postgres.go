package postgres

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const schema = `
	CREATE TABLE IF NOT EXISTS fitting_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		label TEXT,
		pd DOUBLE PRECISION NOT NULL,
		pd_left DOUBLE PRECISION NOT NULL,
		pd_right DOUBLE PRECISION NOT NULL,
		frame_width DOUBLE PRECISION NOT NULL,
		bridge DOUBLE PRECISION,
		face_height DOUBLE PRECISION,
		face_shape TEXT,
		face_size TEXT,
		recommendations TEXT[] NOT NULL DEFAULT '{}',
		snapshot_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS fitting_records_user_id_idx ON fitting_records (user_id, created_at DESC);
`

// DSN builds the connection string from DB_* environment variables unless
// DATABASE_URL is set.
func DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	sslMode := os.Getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func New() (*sqlx.DB, error) {
	return Open(context.Background(), DSN())
}

// Open connects, tunes the pool and applies the schema.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logrus.Info("Connected to Postgres")
	return db, nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("redis: key not found")

const snapshotKeyPrefix = "vto:session:"

type IRedis interface {
	SetSnapshot(ctx context.Context, sessionID string, snapshot any, expiration time.Duration) error
	GetSnapshot(ctx context.Context, sessionID string, dest any) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type redisClient struct {
	client *redis.Client
	json   jsoniter.API
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{
		client: client,
		json:   jsoniter.ConfigCompatibleWithStandardLibrary,
	}
}

func SnapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

func (r *redisClient) SetSnapshot(ctx context.Context, sessionID string, snapshot any, expiration time.Duration) error {
	key := SnapshotKey(sessionID)

	payload, err := r.json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error setting snapshot for key %s: %v", key, err))
		return err
	}

	logrus.Debug(fmt.Sprintf("Stored snapshot for key %s with expiration %v", key, expiration))
	return nil
}

func (r *redisClient) GetSnapshot(ctx context.Context, sessionID string, dest any) error {
	key := SnapshotKey(sessionID)

	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Snapshot not found for key %s", key))
		return ErrNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error getting snapshot for key %s: %v", key, err))
		return err
	}

	if err := r.json.Unmarshal(val, dest); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return nil
}

func (r *redisClient) DeleteSnapshot(ctx context.Context, sessionID string) error {
	key := SnapshotKey(sessionID)

	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting snapshot for key %s: %v", key, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Snapshot key %s not found for deletion", key))
	}
	return nil
}

func (r *redisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

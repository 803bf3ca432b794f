package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ingestStatusKey = "ingest:status"

// IngestStatusRepository 记录最近一次语料导入的状态描述。
type IngestStatusRepository interface {
	Set(ctx context.Context, status string) error
	Get(ctx context.Context) (string, error)
}

type redisIngestStatusRepository struct {
	redisClient *redis.Client
}

// NewIngestStatusRepository 创建一个新的 IngestStatusRepository 实例。
func NewIngestStatusRepository(redisClient *redis.Client) IngestStatusRepository {
	return &redisIngestStatusRepository{redisClient: redisClient}
}

// Set 写入状态描述，24 小时后自动过期。
func (r *redisIngestStatusRepository) Set(ctx context.Context, status string) error {
	return r.redisClient.Set(ctx, ingestStatusKey, status, 24*time.Hour).Err()
}

// Get 读取状态描述，从未写入过时返回空字符串。
func (r *redisIngestStatusRepository) Get(ctx context.Context) (string, error) {
	status, err := r.redisClient.Get(ctx, ingestStatusKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get ingest status: %w", err)
	}
	return status, nil
}

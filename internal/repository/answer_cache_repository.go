package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"wiki-qa-go/internal/model"

	"github.com/go-redis/redis/v8"
)

// AnswerCacheRepository 定义了问答结果缓存的操作接口。
// 同一问题在缓存有效期内不会重复触发检索与推理。
type AnswerCacheRepository interface {
	Get(ctx context.Context, key string) (*model.QAResult, error)
	Set(ctx context.Context, key string, result *model.QAResult, ttl time.Duration) error
}

type redisAnswerCacheRepository struct {
	redisClient *redis.Client
}

// NewAnswerCacheRepository 创建一个新的 AnswerCacheRepository 实例。
func NewAnswerCacheRepository(redisClient *redis.Client) AnswerCacheRepository {
	return &redisAnswerCacheRepository{redisClient: redisClient}
}

// Get 从 Redis 读取缓存的问答结果，未命中时返回 (nil, nil)。
func (r *redisAnswerCacheRepository) Get(ctx context.Context, key string) (*model.QAResult, error) {
	jsonData, err := r.redisClient.Get(ctx, r.cacheKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached answer: %w", err)
	}
	var result model.QAResult
	if err := json.Unmarshal([]byte(jsonData), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached answer: %w", err)
	}
	return &result, nil
}

// Set 将问答结果写入 Redis 缓存。
func (r *redisAnswerCacheRepository) Set(ctx context.Context, key string, result *model.QAResult, ttl time.Duration) error {
	jsonData, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal answer for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, r.cacheKey(key), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached answer: %w", err)
	}
	return nil
}

func (r *redisAnswerCacheRepository) cacheKey(key string) string {
	return fmt.Sprintf("qa:answer:%s", key)
}

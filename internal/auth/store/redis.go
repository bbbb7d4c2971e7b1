package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lk2023060901/model-catalog/internal/pkg/redis"
)

// RedisKeyPrefix Redis key 前缀
const RedisKeyPrefix = "session:"

// RedisStore Redis 会话存储，多实例部署时共享会话
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

// Save 保存会话
func (s *RedisStore) Save(ctx context.Context, id string, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	return s.client.Set(ctx, RedisKeyPrefix+id, string(data), s.ttl)
}

// Load 加载会话
func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, RedisKeyPrefix+id)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete 删除会话
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Del(ctx, RedisKeyPrefix+id)
	return err
}

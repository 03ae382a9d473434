package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"Conflux/internal/domain/models"
	domrepo "Conflux/internal/domain/repository"
)

// RedisWeightStore persists the weight table as one JSON value under a fixed
// key, overwritten wholesale on every flush.
type RedisWeightStore struct {
	client *redis.Client
	key    string
}

func NewRedisWeightStore(addr, password string, db int, key string) *RedisWeightStore {
	if key == "" {
		key = "conflux:weights"
	}
	return &RedisWeightStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		key:    key,
	}
}

func (s *RedisWeightStore) Load(ctx context.Context) (*models.WeightTable, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var table models.WeightTable
	if err := json.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("parse weight table: %w", err)
	}
	return &table, nil
}

func (s *RedisWeightStore) Save(ctx context.Context, table *models.WeightTable) error {
	table.SavedAt = time.Now()
	b, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode weight table: %w", err)
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisWeightStore) Close() error { return s.client.Close() }

var _ domrepo.WeightTableRepository = (*RedisWeightStore)(nil)

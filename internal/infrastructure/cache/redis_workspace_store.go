package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fuelops/backend/internal/domain/fuel"
)

// RedisWorkspaceStore keeps workspaces in Redis so several instances
// share them
type RedisWorkspaceStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisWorkspaceStore wraps an existing client. A non-positive ttl stores
// workspaces without expiry.
func NewRedisWorkspaceStore(client *redis.Client, ttl time.Duration) *RedisWorkspaceStore {
	return &RedisWorkspaceStore{
		client:    client,
		keyPrefix: workspaceKeyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisWorkspaceStore) key(id string) string {
	return s.keyPrefix + id
}

// Get loads a workspace snapshot
func (s *RedisWorkspaceStore) Get(ctx context.Context, id string) (*fuel.Workspace, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fuel.ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load workspace %s: %w", id, err)
	}
	return decodeWorkspace(data)
}

// Put overwrites the snapshot and refreshes its TTL
func (s *RedisWorkspaceStore) Put(ctx context.Context, ws *fuel.Workspace) error {
	data, err := encodeWorkspace(ws)
	if err != nil {
		return err
	}

	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(ws.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store workspace %s: %w", ws.ID, err)
	}
	return nil
}

// Delete removes the snapshot
func (s *RedisWorkspaceStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete workspace %s: %w", id, err)
	}
	return nil
}

// Close closes the underlying client
func (s *RedisWorkspaceStore) Close() error {
	return s.client.Close()
}

var _ ClosableWorkspaceStore = (*RedisWorkspaceStore)(nil)

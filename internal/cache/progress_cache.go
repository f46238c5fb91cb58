package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"surveyassistant/internal/model"

	"github.com/redis/go-redis/v9"
)

// ProgressCache stores the latest progress snapshot of each session so
// hosts can watch surveys without touching the live engine.
type ProgressCache interface {
	Set(ctx context.Context, snap *model.ProgressSnapshot) error
	Get(ctx context.Context, sessionID string) (*model.ProgressSnapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type progressCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressCache(client *redis.Client, ttl time.Duration) ProgressCache {
	return &progressCache{
		client: client,
		ttl:    ttl,
	}
}

func progressKey(sessionID string) string {
	return "session:" + sessionID + ":progress"
}

func (c *progressCache) Set(ctx context.Context, snap *model.ProgressSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, progressKey(snap.SessionID), data, c.ttl).Err()
}

// Get returns nil, nil when no snapshot is cached.
func (c *progressCache) Get(ctx context.Context, sessionID string) (*model.ProgressSnapshot, error) {
	data, err := c.client.Get(ctx, progressKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap model.ProgressSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *progressCache) Delete(ctx context.Context, sessionID string) error {
	return c.client.Del(ctx, progressKey(sessionID)).Err()
}

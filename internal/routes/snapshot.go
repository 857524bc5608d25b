package routes

import (
	"context"
	"encoding/json"
	"errors"
	"expert-api/internal/logger"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotStore shares a generated manifest with other processes.
type SnapshotStore interface {
	Save(ctx context.Context, m *Manifest, menu *Menu) error
	// Load returns nil values without error when nothing is stored.
	Load(ctx context.Context) (*Manifest, *Menu, error)
}

// RedisStore keeps the latest manifest and menu as JSON under two keys that
// expire after ttl.
type RedisStore struct {
	rc     *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns nil when rc is nil so callers can pass it straight
// through as an optional store.
func NewRedisStore(rc *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if rc == nil {
		return nil
	}
	if prefix == "" {
		prefix = "routes:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rc: rc, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) manifestKey() string { return s.prefix + "manifest" }
func (s *RedisStore) menuKey() string     { return s.prefix + "menu" }

func (s *RedisStore) Save(ctx context.Context, m *Manifest, menu *Menu) error {
	mb, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	nb, err := json.Marshal(menu)
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}
	_, err = s.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.manifestKey(), mb, s.ttl)
		p.Set(ctx, s.menuKey(), nb, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*Manifest, *Menu, error) {
	mb, err := s.rc.Get(ctx, s.manifestKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(mb, &m); err != nil {
		return nil, nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Routes == nil {
		m.Routes = map[string]Params{}
	}
	m.Size = len(m.Routes)

	nb, err := s.rc.Get(ctx, s.menuKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return &m, nil, nil
	}
	// the manifest alone is enough; the menu is recomputed from it
	if err != nil {
		logger.L().Warn("routes_snapshot_menu_error", "err", err)
		return &m, nil, nil
	}
	var menu Menu
	if err := json.Unmarshal(nb, &menu); err != nil {
		logger.L().Warn("routes_snapshot_menu_error", "err", err)
		return &m, nil, nil
	}
	return &m, &menu, nil
}

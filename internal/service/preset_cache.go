package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ielts-prep/internal/cache"
	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPresetCacheTTL = 10 * time.Minute

	presetLoadTimeout = 10 * time.Second
)

// cachedPreset is the JSON form of a preset stored in the cache.
type cachedPreset struct {
	ID        string          `json:"id"`
	Module    string          `json:"module"`
	Topic     string          `json:"topic,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// cachedPresetRepository puts a read-through cache in front of a
// PresetRepository. Cache failures are logged and the repository is used.
type cachedPresetRepository struct {
	repo  domain.PresetRepository
	cache domain.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedPresetRepository wraps repo. A nil cache disables caching.
func NewCachedPresetRepository(repo domain.PresetRepository, c domain.Cache, ttl time.Duration) domain.PresetRepository {
	if c == nil {
		return repo
	}
	if ttl <= 0 {
		ttl = DefaultPresetCacheTTL
	}
	return &cachedPresetRepository{repo: repo, cache: c, ttl: ttl}
}

func (r *cachedPresetRepository) ListPublished(ctx context.Context, module domain.Module) ([]*domain.Preset, error) {
	key := cache.PresetListKey(string(module))

	if presets, ok := r.fromCache(ctx, key); ok {
		return presets, nil
	}

	// The load is shared by every caller waiting on key, so it must not
	// inherit one caller's cancellation. Each caller still stops waiting
	// when its own ctx ends.
	ch := r.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), presetLoadTimeout)
		defer cancel()
		presets, err := r.repo.ListPublished(loadCtx, module)
		if err != nil {
			return nil, err
		}
		r.store(loadCtx, key, presets)
		return presets, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]*domain.Preset), nil
	}
}

func (r *cachedPresetRepository) SavePreset(ctx context.Context, preset *domain.Preset) error {
	if err := r.repo.SavePreset(ctx, preset); err != nil {
		return err
	}
	key := cache.PresetListKey(string(preset.Module))
	if err := r.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("Failed to invalidate preset cache", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (r *cachedPresetRepository) fromCache(ctx context.Context, key string) ([]*domain.Preset, bool) {
	raw, err := r.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Preset cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entries []cachedPreset
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Get().Warn("Discarding corrupt preset cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	presets := make([]*domain.Preset, 0, len(entries))
	for _, e := range entries {
		presets = append(presets, &domain.Preset{
			ID:          e.ID,
			Module:      domain.Module(e.Module),
			Topic:       e.Topic,
			Payload:     e.Payload,
			IsPublished: true,
			CreatedAt:   e.CreatedAt,
		})
	}
	logger.Get().Debug("Preset cache hit", zap.String("key", key), zap.Int("count", len(presets)))
	return presets, true
}

func (r *cachedPresetRepository) store(ctx context.Context, key string, presets []*domain.Preset) {
	entries := make([]cachedPreset, 0, len(presets))
	for _, p := range presets {
		entries = append(entries, cachedPreset{
			ID:        p.ID,
			Module:    string(p.Module),
			Topic:     p.Topic,
			Payload:   p.Payload,
			CreatedAt: p.CreatedAt,
		})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		logger.Get().Warn("Failed to encode presets for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.cache.Set(ctx, key, string(data), r.ttl); err != nil {
		logger.Get().Warn("Preset cache write failed", zap.String("key", key), zap.Error(err))
	}
}

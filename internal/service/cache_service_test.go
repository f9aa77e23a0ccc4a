package service

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type memoryCacheRepo struct {
	items   map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if m.failGet != nil {
		return m.failGet
	}
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	var out map[string]int
	assert.False(t, cache.Get(context.Background(), "run:1", &out))

	cache.Set(context.Background(), "run:1", map[string]int{"version": 2}, 0)
	require.True(t, cache.Get(context.Background(), "run:1", &out))
	assert.Equal(t, 2, out["version"])
	assert.Equal(t, time.Minute, repo.ttls["run:1"])

	cache.Invalidate(context.Background(), "run:1")
	assert.False(t, cache.Get(context.Background(), "run:1", &out))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, false)

	cache.Set(context.Background(), "run:1", "x", time.Minute)
	assert.Empty(t, repo.items)
	var out string
	assert.False(t, cache.Get(context.Background(), "run:1", &out))
}

func TestCacheServiceSwallowsBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.failGet = errors.New("connection reset")
	cache := NewCacheService(repo, nil, 0, nil, true)

	var out string
	assert.False(t, cache.Get(context.Background(), "run:1", &out))
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, true)
	ctx := context.Background()

	cache.Set(ctx, "project:p1:runs", []string{"a"}, 0)
	cache.Set(ctx, "project:p2:runs", []string{"b"}, 0)
	cache.InvalidatePattern(ctx, projectCachePattern("p1"))

	assert.NotContains(t, repo.items, "project:p1:runs")
	assert.Contains(t, repo.items, "project:p2:runs")
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/leave-dashboard-api/pkg/errors"
)

type stubCacheRepo struct {
	store    map[string][]byte
	getErr   error
	patterns []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestRememberCachesSecondCall(t *testing.T) {
	repo := &stubCacheRepo{}
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
	calls := 0
	load := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	first, hit, err := remember(context.Background(), cache, "leave:test", 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int{1, 2, 3}, first)

	second, hit, err := remember(context.Background(), cache, "leave:test", 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	snapshot := metrics.Snapshot()
	assert.EqualValues(t, 1, snapshot.CacheHits)
	assert.EqualValues(t, 1, snapshot.CacheMisses)
}

func TestRememberBypassesBrokenCache(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{getErr: errors.New("connection refused")}, nil, 0, nil, true)
	value, hit, err := remember(context.Background(), cache, "k", 0, func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", value)
}

func TestRememberDisabledCacheAlwaysLoads(t *testing.T) {
	var cache *CacheService
	calls := 0
	for i := 0; i < 2; i++ {
		_, hit, err := remember(context.Background(), cache, "k", 0, func(context.Context) (int, error) {
			calls++
			return calls, nil
		})
		require.NoError(t, err)
		assert.False(t, hit)
	}
	assert.Equal(t, 2, calls)
}

func TestInvalidateNamespace(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, cache.InvalidateNamespace(context.Background(), CacheNamespaceLeave))
	assert.Equal(t, []string{"leave:*"}, repo.patterns)
}

func TestMakeCacheKey(t *testing.T) {
	assert.Equal(t, "leave:summary:2025:-:a|b", makeCacheKey(CacheNamespaceLeave, "summary", "2025", "", "a:b"))
}

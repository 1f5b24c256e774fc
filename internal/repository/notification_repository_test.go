package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

func TestMemoryNotificationRepositoryDrainsPerSession(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	ctx := context.Background()

	require.NoError(t, repo.Push(ctx, "a", models.Success("satu"), time.Minute))
	require.NoError(t, repo.Push(ctx, "a", models.Failure("dua"), time.Minute))
	require.NoError(t, repo.Push(ctx, "b", models.Success("tiga"), time.Minute))

	items, err := repo.Drain(ctx, "a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "satu", items[0].Message)
	assert.Equal(t, "dua", items[1].Message)

	items, err = repo.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, items)

	items, err = repo.Drain(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryNotificationRepositoryExpires(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Push(context.Background(), "a", models.Success("lama"), time.Minute))
	now = now.Add(2 * time.Minute)

	items, err := repo.Drain(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNotificationRepositoryWithoutClientIsNoop(t *testing.T) {
	repo := NewNotificationRepository(nil, nil)
	require.NoError(t, repo.Push(context.Background(), "a", models.Success("x"), time.Minute))
	items, err := repo.Drain(context.Background(), "a")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, repo.Close())
}

func TestMemoryNotificationRepositorySweepsAbandonedSessions(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		require.NoError(t, repo.Push(ctx, fmt.Sprintf("session-%d", i), models.Failure("gagal"), time.Minute))
	}
	now = now.Add(time.Hour)
	require.NoError(t, repo.Push(ctx, "fresh", models.Success("baru"), time.Minute))

	assert.Equal(t, 1000, repo.Sweep())
	assert.Equal(t, 1, repo.Len())

	items, err := repo.Drain(ctx, "fresh")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestMemoryNotificationRepositoryCleanupLoop(t *testing.T) {
	repo := NewMemoryNotificationRepository()
	require.NoError(t, repo.Push(context.Background(), "a", models.Success("x"), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.StartCleanup(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool { return repo.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func newRedisRepository(t *testing.T) (*NotificationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewNotificationRepository(client, nil)
	t.Cleanup(func() { _ = repo.Close() })
	return repo, mr
}

func TestNotificationRepositoryRedisRoundTrip(t *testing.T) {
	repo, mr := newRedisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Push(ctx, "a", models.Success("satu"), time.Minute))
	require.NoError(t, repo.Push(ctx, "a", models.Failure("dua"), time.Minute))

	key := notificationKeyPrefix + "a"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))

	items, err := repo.Drain(ctx, "a")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.Success("satu").Message, items[0].Message)
	assert.Equal(t, models.NotificationError, items[1].Level)
	assert.False(t, mr.Exists(key))

	items, err = repo.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNotificationRepositoryRedisExpiry(t *testing.T) {
	repo, mr := newRedisRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Push(ctx, "a", models.Success("lama"), time.Minute))
	mr.FastForward(2 * time.Minute)

	items, err := repo.Drain(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNotificationRepositoryRedisSkipsMalformed(t *testing.T) {
	repo, mr := newRedisRepository(t)
	ctx := context.Background()

	key := notificationKeyPrefix + "a"
	_, err := mr.Push(key, "not json")
	require.NoError(t, err)
	require.NoError(t, repo.Push(ctx, "a", models.Success("valid"), time.Minute))

	items, err := repo.Drain(ctx, "a")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "valid", items[0].Message)
}

func TestNotificationRepositoryRedisUnavailable(t *testing.T) {
	repo, mr := newRedisRepository(t)
	mr.Close()

	err := repo.Push(context.Background(), "a", models.Success("x"), time.Minute)
	assert.ErrorContains(t, err, "redis push")
}

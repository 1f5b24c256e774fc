package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

const notificationKeyPrefix = "laporan:notifications:"

// NotificationRepository stores per-session notification queues in Redis lists.
type NotificationRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewNotificationRepository constructs a Redis backed notification repository.
func NewNotificationRepository(client *redis.Client, logger *zap.Logger) *NotificationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationRepository{client: client, logger: logger}
}

// Push appends a notification and refreshes the list expiry.
func (r *NotificationRepository) Push(ctx context.Context, session string, n models.Notification, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	key := notificationKeyPrefix + session
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push %s: %w", key, err)
	}
	return nil
}

// Drain returns and removes every pending notification of the session.
func (r *NotificationRepository) Drain(ctx context.Context, session string) ([]models.Notification, error) {
	if r.client == nil {
		return nil, nil
	}
	key := notificationKeyPrefix + session
	var items *redis.StringSliceCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		items = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis drain %s: %w", key, err)
	}

	raw := items.Val()
	out := make([]models.Notification, 0, len(raw))
	for _, item := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(item), &n); err != nil {
			r.logger.Warn("dropping malformed notification", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Close releases the underlying Redis connection if present.
func (r *NotificationRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

type memoryNotifications struct {
	items     []models.Notification
	expiresAt time.Time
}

// MemoryNotificationRepository keeps notification queues in process. It backs
// the console when Redis is not configured.
type MemoryNotificationRepository struct {
	mu     sync.Mutex
	queues map[string]*memoryNotifications
	now    func() time.Time
}

// NewMemoryNotificationRepository constructs an empty in-process store.
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{queues: make(map[string]*memoryNotifications), now: time.Now}
}

// Push appends a notification and refreshes the queue expiry.
func (r *MemoryNotificationRepository) Push(_ context.Context, session string, n models.Notification, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[session]
	if !ok || r.expired(q) {
		q = &memoryNotifications{}
		r.queues[session] = q
	}
	q.items = append(q.items, n)
	if ttl > 0 {
		q.expiresAt = r.now().Add(ttl)
	} else {
		q.expiresAt = time.Time{}
	}
	return nil
}

// Drain returns and removes every pending notification of the session.
func (r *MemoryNotificationRepository) Drain(_ context.Context, session string) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[session]
	delete(r.queues, session)
	if !ok || r.expired(q) {
		return []models.Notification{}, nil
	}
	return q.items, nil
}

func (r *MemoryNotificationRepository) expired(q *memoryNotifications) bool {
	return !q.expiresAt.IsZero() && r.now().After(q.expiresAt)
}

// Sweep drops every expired queue and reports how many were removed.
func (r *MemoryNotificationRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for session, q := range r.queues {
		if r.expired(q) {
			delete(r.queues, session)
			removed++
		}
	}
	return removed
}

// Len reports the number of queues currently held.
func (r *MemoryNotificationRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}

// StartCleanup sweeps expired queues every interval until ctx is done.
func (r *MemoryNotificationRepository) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

// NotificationRepository abstracts persistence for transient notifications.
type NotificationRepository interface {
	Push(ctx context.Context, session string, n models.Notification, ttl time.Duration) error
	Drain(ctx context.Context, session string) ([]models.Notification, error)
}

// NotificationService queues short-lived notifications per session until the
// console drains them.
type NotificationService struct {
	repo   NotificationRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewNotificationService constructs a notification service.
func NewNotificationService(repo NotificationRepository, ttl time.Duration, logger *zap.Logger) *NotificationService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, ttl: ttl, logger: logger}
}

// Enabled indicates whether notifications are stored.
func (s *NotificationService) Enabled() bool {
	return s != nil && s.repo != nil
}

// Publish stores n for session. Storage failures are only logged.
func (s *NotificationService) Publish(ctx context.Context, session string, n models.Notification) {
	if !s.Enabled() || session == "" {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.Push(ctx, session, n, s.ttl); err != nil {
		s.logger.Warn("notification publish failed", zap.String("session_id", session), zap.Error(err))
	}
}

// Drain returns and clears the pending notifications of session.
func (s *NotificationService) Drain(ctx context.Context, session string) ([]models.Notification, error) {
	if !s.Enabled() || session == "" {
		return []models.Notification{}, nil
	}
	items, err := s.repo.Drain(ctx, session)
	if err != nil {
		s.logger.Warn("notification drain failed", zap.String("session_id", session), zap.Error(err))
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

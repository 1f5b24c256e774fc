package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/jobs"
)

type exportLogStore interface {
	Create(ctx context.Context, entry *models.ExportLog) error
	ListRecent(ctx context.Context, limit int) ([]models.ExportLog, error)
}

type exportLogObserver interface {
	ObserveExportLogWrite(ok bool)
}

// ExportLogConfig tunes the background writer.
type ExportLogConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

// ExportLogService writes export audit records in the background.
type ExportLogService struct {
	store    exportLogStore
	observer exportLogObserver
	queue    *jobs.Queue[models.ExportLog]
	logger   *zap.Logger
}

// NewExportLogService constructs the writer. Call Start before recording.
func NewExportLogService(store exportLogStore, observer exportLogObserver, cfg ExportLogConfig, logger *zap.Logger) *ExportLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ExportLogService{store: store, observer: observer, logger: logger}
	svc.queue = jobs.NewQueue[models.ExportLog]("export-log", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return svc
}

// Start launches the workers.
func (s *ExportLogService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop flushes buffered records and stops the workers.
func (s *ExportLogService) Stop() {
	s.queue.Stop()
}

// Record enqueues entry without waiting for it to be written.
func (s *ExportLogService) Record(_ context.Context, entry models.ExportLog) error {
	_, err := s.queue.TryEnqueue(entry)
	return err
}

// Recent returns the newest persisted export records.
func (s *ExportLogService) Recent(ctx context.Context, limit int) ([]models.ExportLog, error) {
	logs, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list export logs", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list export logs")
	}
	return logs, nil
}

func (s *ExportLogService) handle(ctx context.Context, job jobs.Job[models.ExportLog]) error {
	entry := job.Payload
	err := s.store.Create(ctx, &entry)
	if s.observer != nil {
		s.observer.ObserveExportLogWrite(err == nil)
	}
	if err != nil {
		return err
	}
	s.logger.Debug("export logged", zap.String("id", entry.ID), zap.String("format", string(entry.Format)), zap.Int("rows", entry.RowCount))
	return nil
}

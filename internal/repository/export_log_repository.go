package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

// ExportLogRepository persists export audit records.
type ExportLogRepository struct {
	db *sqlx.DB
}

// NewExportLogRepository constructs the repository.
func NewExportLogRepository(db *sqlx.DB) *ExportLogRepository {
	return &ExportLogRepository{db: db}
}

// Create inserts one export log row, filling id and timestamp when unset.
func (r *ExportLogRepository) Create(ctx context.Context, entry *models.ExportLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_logs (id, format, filename, row_count, search, program, region, session_id, created_at)
VALUES (:id, :format, :filename, :row_count, :search, :program, :region, :session_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create export log: %w", err)
	}
	return nil
}

// ListRecent returns the newest export logs first.
func (r *ExportLogRepository) ListRecent(ctx context.Context, limit int) ([]models.ExportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, format, filename, row_count, search, program, region, session_id, created_at
FROM export_logs ORDER BY created_at DESC LIMIT $1`
	logs := make([]models.ExportLog, 0)
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("list export logs: %w", err)
	}
	return logs, nil
}

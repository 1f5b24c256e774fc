package models

import "time"

// ExportFormat enumerates supported export encodings.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportLog records one generated export artifact.
type ExportLog struct {
	ID        string       `db:"id" json:"id"`
	Format    ExportFormat `db:"format" json:"format"`
	Filename  string       `db:"filename" json:"filename"`
	RowCount  int          `db:"row_count" json:"rowCount"`
	Search    string       `db:"search" json:"search"`
	Program   *string      `db:"program" json:"program,omitempty"`
	Region    *string      `db:"region" json:"region,omitempty"`
	SessionID string       `db:"session_id" json:"sessionId"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

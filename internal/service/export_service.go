package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/export"
)

// Export file names and presentation constants.
const (
	ExportBaseName = "laporan"
	ExportSheet    = "Reports"
	ExportPDFTitle = "Laporan Data"
)

// ExportHeaders is the column header row shared by CSV and XLSX output.
var ExportHeaders = []string{"Nama Program", "Wilayah", "Jumlah Penerima", "Status"}

var exportContentTypes = map[models.ExportFormat]string{
	models.ExportFormatCSV:  "text/csv; charset=utf-8",
	models.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	models.ExportFormatPDF:  "application/pdf",
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type exportRecorder interface {
	Record(ctx context.Context, log models.ExportLog) error
}

type exportObserver interface {
	ObserveExport(format string, rows int)
}

type tabularRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type documentRenderer interface {
	Render(title string, lines []string) ([]byte, error)
}

// ExportArtifact is a rendered export file held in memory.
type ExportArtifact struct {
	Format      models.ExportFormat
	Filename    string
	ContentType string
	Content     []byte
	Rows        int
}

// ExportContext carries audit details about who exported what.
type ExportContext struct {
	Filter    models.FilterState
	SessionID string
}

// ExportService renders the filtered report subset into downloadable files.
type ExportService struct {
	csv      tabularRenderer
	xlsx     tabularRenderer
	pdf      documentRenderer
	recorder exportRecorder
	observer exportObserver
	logger   *zap.Logger
	now      func() time.Time
}

// ExportServiceParams groups constructor dependencies. Nil renderers fall back to
// the package defaults.
type ExportServiceParams struct {
	CSV      tabularRenderer
	XLSX     tabularRenderer
	PDF      documentRenderer
	Recorder exportRecorder
	Observer exportObserver
	Logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(params ExportServiceParams) *ExportService {
	if params.CSV == nil {
		params.CSV = export.NewCSVExporter()
	}
	if params.XLSX == nil {
		params.XLSX = export.NewXLSXExporter(ExportSheet)
	}
	if params.PDF == nil {
		params.PDF = export.NewPDFExporter(export.DefaultPDFLayout())
	}
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &ExportService{
		csv:      params.CSV,
		xlsx:     params.XLSX,
		pdf:      params.PDF,
		recorder: params.Recorder,
		observer: params.Observer,
		logger:   params.Logger,
		now:      time.Now,
	}
}

// ParseExportFormat validates a user supplied format name.
func ParseExportFormat(raw string) (models.ExportFormat, error) {
	format := models.ExportFormat(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := exportContentTypes[format]; !ok {
		return "", appErrors.Invalid("unsupported export format %q, use csv, xlsx or pdf", raw)
	}
	return format, nil
}

// ExportFilename returns the fixed download name for format.
func ExportFilename(format models.ExportFormat) string {
	return ExportBaseName + "." + string(format)
}

// Export renders rows in the given format. Rows must already be the filtered
// subset; they are written in the order given.
func (s *ExportService) Export(ctx context.Context, rows []models.Report, format models.ExportFormat, meta ExportContext) (*ExportArtifact, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, appErrors.Invalid("unsupported export format %q", format)
	}

	var (
		content []byte
		err     error
	)
	switch format {
	case models.ExportFormatCSV:
		content, err = s.csv.Render(ExportDataset(rows))
	case models.ExportFormatXLSX:
		content, err = s.xlsx.Render(ExportDataset(rows))
	case models.ExportFormatPDF:
		content, err = s.pdf.Render(ExportPDFTitle, ExportLines(rows))
	}
	if err != nil {
		s.logger.Error("failed to render export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	artifact := &ExportArtifact{
		Format:      format,
		Filename:    ExportFilename(format),
		ContentType: contentType,
		Content:     content,
		Rows:        len(rows),
	}
	if s.observer != nil {
		s.observer.ObserveExport(string(format), artifact.Rows)
	}
	s.record(ctx, artifact, meta)
	return artifact, nil
}

// Save writes the artifact through store and returns the written path.
func (s *ExportService) Save(store fileStorage, artifact *ExportArtifact) (string, error) {
	if artifact == nil {
		return "", fmt.Errorf("nil export artifact")
	}
	path, err := store.Save(artifact.Filename, artifact.Content)
	if err != nil {
		s.logger.Error("failed to save export", zap.String("filename", artifact.Filename), zap.Error(err))
		return "", err
	}
	s.logger.Info("export saved", zap.String("path", path), zap.Int("rows", artifact.Rows))
	return path, nil
}

func (s *ExportService) record(ctx context.Context, artifact *ExportArtifact, meta ExportContext) {
	if s.recorder == nil {
		return
	}
	filter := cloneFilter(meta.Filter)
	entry := models.ExportLog{
		ID:        uuid.NewString(),
		Format:    artifact.Format,
		Filename:  artifact.Filename,
		RowCount:  artifact.Rows,
		Search:    filter.Search,
		Program:   filter.Program,
		Region:    filter.Region,
		SessionID: meta.SessionID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.recorder.Record(ctx, entry); err != nil {
		s.logger.Warn("failed to record export", zap.String("format", string(artifact.Format)), zap.Error(err))
	}
}

// ExportDataset projects reports into the tabular export layout.
func ExportDataset(rows []models.Report) export.Dataset {
	data := export.Dataset{
		Headers: append([]string(nil), ExportHeaders...),
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, []interface{}{r.ProgramName(), r.Region, int64(r.RecipientCount), string(r.Status)})
	}
	return data
}

// ExportLines formats one numbered line per report for the PDF document.
func ExportLines(rows []models.Report) []string {
	lines := make([]string, 0, len(rows))
	for i, r := range rows {
		lines = append(lines, fmt.Sprintf("%d. Program: %s, Wilayah: %s, Jumlah Penerima: %d, Status: %s",
			i+1, r.ProgramName(), r.Region, int64(r.RecipientCount), r.Status))
	}
	return lines
}

package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/export"
	"github.com/ricoeriii/pengelola-bansos/pkg/storage"
)

type recordingRecorder struct {
	entries []models.ExportLog
	err     error
}

func (r *recordingRecorder) Record(_ context.Context, entry models.ExportLog) error {
	r.entries = append(r.entries, entry)
	return r.err
}

type pdfCapture struct {
	title string
	lines []string
}

func (p *pdfCapture) Render(title string, lines []string) ([]byte, error) {
	p.title = title
	p.lines = lines
	return []byte("%PDF"), nil
}

func newExportServiceForTest(recorder exportRecorder) *ExportService {
	return NewExportService(ExportServiceParams{Recorder: recorder, Logger: zap.NewNop()})
}

func TestExportEndToEndCSVForFilteredTable(t *testing.T) {
	store := &fakeReportStore{reports: []models.Report{
		report(1, "PKH", "Jakarta", 10, models.ReportStatusPending),
		report(2, "BLT", "Bandung", 5, models.ReportStatusApproved),
	}}
	table := NewReportTable(store, nil, nil)
	require.NoError(t, table.Mount(context.Background()))
	table.SetFilter(models.FilterState{Search: "pkh"})

	recorder := &recordingRecorder{}
	svc := newExportServiceForTest(recorder)
	artifact, err := svc.Export(context.Background(), table.Rows(), models.ExportFormatCSV, ExportContext{Filter: table.Filter(), SessionID: "sess-1"})
	require.NoError(t, err)

	assert.Equal(t, "laporan.csv", artifact.Filename)
	assert.Equal(t, 1, artifact.Rows)
	assert.Equal(t, "Nama Program,Wilayah,Jumlah Penerima,Status\nPKH,Jakarta,10,Pending\n", string(artifact.Content))

	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, models.ExportFormatCSV, entry.Format)
	assert.Equal(t, 1, entry.RowCount)
	assert.Equal(t, "pkh", entry.Search)
	assert.Equal(t, "sess-1", entry.SessionID)
	assert.NotEmpty(t, entry.ID)
}

func TestExportXLSXWritesFilteredRowsInOrder(t *testing.T) {
	rows := []models.Report{
		report(3, "Bansos", "Surabaya", 3, models.ReportStatusRejected),
		report(1, "PKH", "Jakarta", 10, models.ReportStatusPending),
	}
	artifact, err := newExportServiceForTest(nil).Export(context.Background(), rows, models.ExportFormatXLSX, ExportContext{})
	require.NoError(t, err)
	assert.Equal(t, "laporan.xlsx", artifact.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Content))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(ExportSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ExportHeaders, got[0])
	assert.Equal(t, []string{"Bansos", "Surabaya", "3", "Ditolak"}, got[1])
	assert.Equal(t, []string{"PKH", "Jakarta", "10", "Pending"}, got[2])
}

func TestExportPDFNumbersLines(t *testing.T) {
	capture := &pdfCapture{}
	svc := NewExportService(ExportServiceParams{PDF: capture})
	rows := []models.Report{
		report(1, "PKH", "Jakarta", 10, models.ReportStatusPending),
		report(2, "BLT", "Bandung", 5, models.ReportStatusApproved),
	}

	artifact, err := svc.Export(context.Background(), rows, models.ExportFormatPDF, ExportContext{})
	require.NoError(t, err)
	assert.Equal(t, "laporan.pdf", artifact.Filename)
	assert.Equal(t, "application/pdf", artifact.ContentType)
	assert.Equal(t, ExportPDFTitle, capture.title)
	assert.Equal(t, []string{
		"1. Program: PKH, Wilayah: Jakarta, Jumlah Penerima: 10, Status: Pending",
		"2. Program: BLT, Wilayah: Bandung, Jumlah Penerima: 5, Status: Disetujui",
	}, capture.lines)
}

func TestExportEmptySubsetStillHasHeader(t *testing.T) {
	artifact, err := newExportServiceForTest(nil).Export(context.Background(), nil, models.ExportFormatCSV, ExportContext{})
	require.NoError(t, err)
	assert.Equal(t, 0, artifact.Rows)
	assert.Equal(t, "Nama Program,Wilayah,Jumlah Penerima,Status\n", string(artifact.Content))
}

func TestExportRecorderFailureDoesNotFailExport(t *testing.T) {
	recorder := &recordingRecorder{err: errors.New("queue full")}
	artifact, err := newExportServiceForTest(recorder).Export(context.Background(), nil, models.ExportFormatCSV, ExportContext{})
	require.NoError(t, err)
	assert.NotNil(t, artifact)
	assert.Len(t, recorder.entries, 1)
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, models.ExportFormatXLSX, format)

	_, err = ParseExportFormat("docx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = newExportServiceForTest(nil).Export(context.Background(), nil, models.ExportFormat("docx"), ExportContext{})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestExportSaveWritesFixedFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	svc := newExportServiceForTest(nil)
	artifact, err := svc.Export(context.Background(), []models.Report{report(1, "PKH", "Jakarta", 10, models.ReportStatusPending)}, models.ExportFormatCSV, ExportContext{})
	require.NoError(t, err)

	path, err := svc.Save(store, artifact)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "laporan.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Content, data)
}

func TestExportDatasetProjection(t *testing.T) {
	data := ExportDataset([]models.Report{{ProgramID: 2, Region: "Depok", RecipientCount: 4, Status: models.ReportStatusPending}})
	assert.Equal(t, export.Dataset{
		Headers: ExportHeaders,
		Rows:    [][]interface{}{{"BLT", "Depok", int64(4), "Pending"}},
	}, data)
}

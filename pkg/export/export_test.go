package export

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Nama Program", "Wilayah", "Jumlah Penerima", "Status"},
		Rows: [][]interface{}{
			{"PKH", "Jakarta", int64(10), "Pending"},
			{"BLT", "Bandung, Jawa Barat", int64(5), "Disetujui"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	expected := "Nama Program,Wilayah,Jumlah Penerima,Status\n" +
		"PKH,Jakarta,10,Pending\n" +
		"BLT,\"Bandung, Jawa Barat\",5,Disetujui\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterWriteStreams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Write(&buf, sampleDataset()))
	assert.True(t, strings.HasPrefix(buf.String(), "Nama Program,Wilayah"))

	err := NewCSVExporter().Write(&buf, Dataset{})
	assert.ErrorContains(t, err, "csv")
}

func TestCSVExporterHeaderOnly(t *testing.T) {
	data := sampleDataset()
	data.Rows = nil

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Nama Program,Wilayah,Jumlah Penerima,Status\n", string(out))
}

func TestDatasetValidate(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	_, err = NewXLSXExporter("Reports").Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]interface{}{{"only"}}})
	assert.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter("Reports").Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Reports"}, f.GetSheetList())
	rows, err := f.GetRows("Reports")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nama Program", "Wilayah", "Jumlah Penerima", "Status"}, rows[0])
	assert.Equal(t, []string{"PKH", "Jakarta", "10", "Pending"}, rows[1])

	cellType, err := f.GetCellType("Reports", "C2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestPDFExporterWritesLines(t *testing.T) {
	layout := DefaultPDFLayout()
	layout.Compress = false
	exporter := NewPDFExporter(layout)

	out, err := exporter.Render("Laporan Data", []string{
		"1. Program: PKH, Wilayah: Jakarta, Jumlah Penerima: 10, Status: Pending",
	})
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, string(out), "(Laporan Data)")
	assert.Contains(t, string(out), "(1. Program: PKH, Wilayah: Jakarta, Jumlah Penerima: 10, Status: Pending)")
}

func TestPDFExporterPaginates(t *testing.T) {
	layout := DefaultPDFLayout()
	layout.Compress = false
	exporter := NewPDFExporter(layout)

	require.Equal(t, 1, exporter.Pages(0))
	require.Equal(t, 1, exporter.Pages(27))
	require.Equal(t, 2, exporter.Pages(28))

	lines := make([]string, 30)
	for i := range lines {
		lines[i] = fmt.Sprintf("%d. baris", i+1)
	}
	out, err := exporter.Render("Laporan Data", lines)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(string(out), "/Type /Page\n"))
	assert.Contains(t, string(out), "(30. baris)")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", FormatCell(nil))
	assert.Equal(t, "12", FormatCell(12))
	assert.Equal(t, "12", FormatCell(int64(12)))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "x", FormatCell("x"))
}

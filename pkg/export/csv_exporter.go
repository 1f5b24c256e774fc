package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// CSVExporter encodes a Dataset as comma separated text with a single header row.
type CSVExporter struct {
	comma rune
}

// NewCSVExporter builds a comma delimited exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{comma: ','}
}

// Render returns the dataset as CSV bytes.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams the dataset to w.
func (e *CSVExporter) Write(w io.Writer, data Dataset) error {
	if err := data.Validate(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = e.comma

	if err := cw.Write(data.Headers); err != nil {
		return fmt.Errorf("csv header: %w", err)
	}
	record := make([]string, len(data.Headers))
	for n, row := range data.Rows {
		for i, cell := range row {
			record[i] = FormatCell(cell)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("csv row %d: %w", n+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

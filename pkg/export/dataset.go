package export

import (
	"fmt"
	"strconv"
)

// Dataset defines tabular export content. Rows hold typed cell values so that
// spreadsheet encoders can keep numbers numeric.
type Dataset struct {
	Headers []string
	Rows    [][]interface{}
}

// Validate checks that the dataset is rectangular.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("dataset requires at least one header")
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(d.Headers))
		}
	}
	return nil
}

// FormatCell renders a cell value as text.
func FormatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire layout for distribution dates.
const DateLayout = "2006-01-02"

// ReportStatus is the review state assigned by the report service.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "Pending"
	ReportStatusApproved ReportStatus = "Disetujui"
	ReportStatusRejected ReportStatus = "Ditolak"
)

// Color returns the display tag color for the status.
func (s ReportStatus) Color() string {
	switch s {
	case ReportStatusPending:
		return "orange"
	case ReportStatusApproved:
		return "green"
	default:
		return "red"
	}
}

// Program is an aid scheme a report belongs to.
type Program struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Programs is the fixed program lookup set offered by the report form.
var Programs = []Program{
	{ID: 1, Name: "PKH"},
	{ID: 2, Name: "BLT"},
	{ID: 3, Name: "Bansos"},
}

// ProgramByID resolves a program from the lookup set.
func ProgramByID(id int64) (Program, bool) {
	for _, p := range Programs {
		if p.ID == id {
			return p, true
		}
	}
	return Program{}, false
}

// Report is one recorded aid distribution event.
type Report struct {
	ID               int64        `json:"id"`
	ProgramID        int64        `json:"programId,omitempty"`
	Program          Program      `json:"program"`
	RecipientCount   Count        `json:"recipientCount"`
	Region           string       `json:"region"`
	DistributionDate Date         `json:"distributionDate"`
	Proof            string       `json:"proof,omitempty"`
	Note             string       `json:"note,omitempty"`
	Status           ReportStatus `json:"status"`
}

// ProgramName returns the display name, falling back to the lookup set when the
// upstream omitted the embedded program object.
func (r Report) ProgramName() string {
	if r.Program.Name != "" {
		return r.Program.Name
	}
	if p, ok := ProgramByID(r.ProgramID); ok {
		return p.Name
	}
	return ""
}

// Count is a non-negative recipient count. The upstream serialises it either as a
// JSON number or as a numeric string.
type Count int64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode recipient count: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*c = 0
			return nil
		}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil {
			return fmt.Errorf("decode recipient count %q: %w", raw, err)
		}
		n = int64(f)
	}
	if n < 0 {
		return fmt.Errorf("recipient count must not be negative, got %d", n)
	}
	*c = Count(n)
	return nil
}

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads YYYY-MM-DD or an RFC 3339 timestamp, dropping the time part.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// String formats the date as YYYY-MM-DD; the zero date renders empty.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD" or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes dates and timestamps.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode distribution date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricoeriii/pengelola-bansos/pkg/config"
)

const listBody = `[
	{"id":1,"program":{"id":1,"name":"PKH"},"recipientCount":10,"region":"Jakarta","distributionDate":"2024-01-02","status":"Pending"},
	{"id":2,"program":{"id":2,"name":"BLT"},"recipientCount":5,"region":"Bandung","distributionDate":"2024-01-03","status":"Disetujui"}
]`

type upstream struct {
	mu      sync.Mutex
	deletes int
	posts   int
	puts    int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/reports":
		_, _ = io.WriteString(w, listBody)
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"id":2,"program":{"id":2,"name":"BLT"},"recipientCount":5,"region":"Bandung","distributionDate":"2024-01-03","status":"Disetujui","proof":"uploads/b.pdf"}`)
	case r.Method == http.MethodPost:
		u.posts++
		_, _ = io.WriteString(w, `{"id":7,"program":{"id":1,"name":"PKH"},"recipientCount":3,"region":"Depok","distributionDate":"2024-03-01","status":"Pending"}`)
	case r.Method == http.MethodPut:
		u.puts++
		_, _ = io.WriteString(w, `{"id":2,"program":{"id":2,"name":"BLT"},"recipientCount":9,"region":"Bandung","distributionDate":"2024-01-03","status":"Pending"}`)
	case r.Method == http.MethodDelete:
		u.deletes++
		w.WriteHeader(http.StatusNoContent)
	}
}

type harness struct {
	upstream *upstream
	cfg      *config.Config
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ReportAPI: config.ReportAPIConfig{BaseURL: srv.URL, Path: "/api/reports"},
		Proof:     config.ProofConfig{MaxFileSizeBytes: 1 << 20, AllowedExtensions: []string{".jpg", ".png", ".pdf"}},
		Export:    config.ExportConfig{OutputDir: t.TempDir()},
	}
	return &harness{upstream: up, cfg: cfg, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (h *harness) run(stdin string, args ...string) error {
	app := NewApp(h.cfg, nil, strings.NewReader(stdin), h.stdout, h.stderr)
	root := NewRootCommand(app)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestDashboardPrintsCards(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("", "dashboard"))

	out := h.stdout.String()
	assert.Contains(t, out, "Total Laporan")
	assert.Contains(t, out, "15")
}

func TestReportsFiltersByRegion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("", "reports", "--region", "Bandung"))

	out := h.stdout.String()
	assert.Contains(t, out, "BLT")
	assert.NotContains(t, out, "Jakarta")
	assert.Contains(t, out, "1 of 2 reports")
}

func TestExportWritesFile(t *testing.T) {
	h := newHarness(t)
	out := t.TempDir()
	require.NoError(t, h.run("", "export", "csv", "--program", "PKH", "--out", out))

	data, err := os.ReadFile(filepath.Join(out, "laporan.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "PKH")
	assert.Contains(t, h.stdout.String(), "(1 rows)")
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("", "export", "docx"))
}

func TestDeletePromptDeclined(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("n\n", "delete", "2"))
	assert.Zero(t, h.upstream.deletes)
	assert.Contains(t, h.stderr.String(), "Penghapusan dibatalkan")
}

func TestDeletePromptAccepted(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("ya\n", "delete", "2"))
	assert.Equal(t, 1, h.upstream.deletes)
	assert.Contains(t, h.stderr.String(), "Laporan berhasil dihapus")
}

func TestDeleteWithYesSkipsPrompt(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("", "delete", "2", "--yes"))
	assert.Equal(t, 1, h.upstream.deletes)
	assert.NotContains(t, h.stderr.String(), "[y/N]")
}

func TestCreateWithoutProofFails(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "create", "--program", "1", "--recipients", "3", "--region", "Depok", "--date", "2024-03-01")
	require.Error(t, err)
	assert.Zero(t, h.upstream.posts)
	assert.Contains(t, h.stderr.String(), "Harap unggah bukti penyaluran!")
}

func TestCreateWithProof(t *testing.T) {
	h := newHarness(t)
	proof := filepath.Join(t.TempDir(), "bukti.pdf")
	require.NoError(t, os.WriteFile(proof, []byte("%PDF-1.4"), 0o644))

	require.NoError(t, h.run("", "create", "--program", "1", "--recipients", "3", "--region", "Depok", "--date", "2024-03-01", "--proof", proof))
	assert.Equal(t, 1, h.upstream.posts)
	assert.Contains(t, h.stdout.String(), "report 7 saved")
}

func TestEditKeepsUnsetFields(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("", "edit", "2", "--recipients", "9"))
	assert.Equal(t, 1, h.upstream.puts)
	assert.Contains(t, h.stderr.String(), "Laporan berhasil diperbarui!")
}

func TestInvalidID(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, h.run("", "delete", "abc", "--yes"))
}

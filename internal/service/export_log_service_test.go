package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

type fakeExportLogStore struct {
	mu      sync.Mutex
	created []models.ExportLog
	fails   int
}

func (f *fakeExportLogStore) Create(_ context.Context, entry *models.ExportLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		f.fails--
		return errors.New("db unavailable")
	}
	f.created = append(f.created, *entry)
	return nil
}

func (f *fakeExportLogStore) ListRecent(_ context.Context, limit int) ([]models.ExportLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails > 0 {
		return nil, errors.New("db unavailable")
	}
	out := make([]models.ExportLog, 0, len(f.created))
	for i := len(f.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.created[i])
	}
	return out, nil
}

func (f *fakeExportLogStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type writeCounter struct {
	mu     sync.Mutex
	ok     int
	failed int
}

func (w *writeCounter) ObserveExportLogWrite(ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if ok {
		w.ok++
	} else {
		w.failed++
	}
}

func TestExportLogServiceWritesOnStop(t *testing.T) {
	store := &fakeExportLogStore{}
	counter := &writeCounter{}
	svc := NewExportLogService(store, counter, ExportLogConfig{Workers: 1, BufferSize: 8}, nil)
	svc.Start(context.Background())

	require.NoError(t, svc.Record(context.Background(), models.ExportLog{ID: "a", Format: models.ExportFormatCSV}))
	require.NoError(t, svc.Record(context.Background(), models.ExportLog{ID: "b", Format: models.ExportFormatPDF}))
	svc.Stop()

	assert.Equal(t, 2, store.count())
	assert.Equal(t, 2, counter.ok)
}

func TestExportLogServiceRetriesFailedWrites(t *testing.T) {
	store := &fakeExportLogStore{fails: 1}
	counter := &writeCounter{}
	svc := NewExportLogService(store, counter, ExportLogConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	require.NoError(t, svc.Record(context.Background(), models.ExportLog{ID: "a"}))
	require.Eventually(t, func() bool { return store.count() == 1 }, 2*time.Second, 5*time.Millisecond)

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, 1, counter.failed)
	assert.Equal(t, 1, counter.ok)
}

func TestExportLogServiceRejectsBeforeStart(t *testing.T) {
	svc := NewExportLogService(&fakeExportLogStore{}, nil, ExportLogConfig{}, nil)
	assert.Error(t, svc.Record(context.Background(), models.ExportLog{}))
}

func TestExportLogServiceRecentNewestFirst(t *testing.T) {
	store := &fakeExportLogStore{created: []models.ExportLog{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	svc := NewExportLogService(store, nil, ExportLogConfig{}, nil)

	logs, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].ID)
	assert.Equal(t, "b", logs[1].ID)

	store.fails = 1
	_, err = svc.Recent(context.Background(), 2)
	assert.Error(t, err)
}

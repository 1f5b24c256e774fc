package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
)

type tableStore interface {
	List(ctx context.Context) ([]models.Report, error)
	Delete(ctx context.Context, id int64) error
}

type deleteObserver interface {
	ObserveDelete(outcome string)
}

// Confirmer asks the operator to approve a destructive action. Returning false
// cancels the action without error.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// DeleteResult describes the outcome of a table delete command.
type DeleteResult struct {
	ID           int64               `json:"id"`
	Deleted      bool                `json:"deleted"`
	Canceled     bool                `json:"canceled"`
	Notification models.Notification `json:"notification"`
}

// TableSnapshot is an immutable copy of the table state.
type TableSnapshot struct {
	Reports  []models.Report
	Rows     []models.Report
	Options  models.FacetOptions
	Filter   models.FilterState
	Mounted  bool
	LoadedAt time.Time
}

// ReportTable holds the fetched report list of one mounted table screen together
// with its filter. The filtered view is recomputed in full after every change.
type ReportTable struct {
	store    tableStore
	observer deleteObserver
	logger   *zap.Logger

	mu       sync.RWMutex
	reports  []models.Report
	filter   models.FilterState
	rows     []models.Report
	options  models.FacetOptions
	mounted  bool
	loadedAt time.Time
}

// NewReportTable constructs an unmounted table.
func NewReportTable(store tableStore, observer deleteObserver, logger *zap.Logger) *ReportTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &ReportTable{store: store, observer: observer, logger: logger}
	t.recompute()
	return t
}

// Mount discards any held list and fetches a fresh one. On failure the previous
// state is kept.
func (t *ReportTable) Mount(ctx context.Context) error {
	reports, err := t.store.List(ctx)
	if err != nil {
		t.logger.Error("failed to fetch reports", zap.Error(err))
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reports = reports
	t.mounted = true
	t.loadedAt = time.Now().UTC()
	t.recompute()
	return nil
}

// Mounted reports whether a list has been fetched.
func (t *ReportTable) Mounted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mounted
}

// SetFilter replaces the filter snapshot.
func (t *ReportTable) SetFilter(f models.FilterState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filter = cloneFilter(f)
	t.recompute()
}

// Filter returns the active filter.
func (t *ReportTable) Filter() models.FilterState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return cloneFilter(t.filter)
}

// Rows returns the currently filtered subset.
func (t *ReportTable) Rows() []models.Report {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Report(nil), t.rows...)
}

// Options returns selector choices derived from the unfiltered list.
func (t *ReportTable) Options() models.FacetOptions {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return models.FacetOptions{
		Programs: append([]string{}, t.options.Programs...),
		Regions:  append([]string{}, t.options.Regions...),
	}
}

// All returns the unfiltered list.
func (t *ReportTable) All() []models.Report {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]models.Report(nil), t.reports...)
}

// Snapshot copies the whole table state.
func (t *ReportTable) Snapshot() TableSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TableSnapshot{
		Reports: append([]models.Report(nil), t.reports...),
		Rows:    append([]models.Report(nil), t.rows...),
		Options: models.FacetOptions{
			Programs: append([]string(nil), t.options.Programs...),
			Regions:  append([]string(nil), t.options.Regions...),
		},
		Filter:   cloneFilter(t.filter),
		Mounted:  t.mounted,
		LoadedAt: t.loadedAt,
	}
}

// Delete removes one report after confirmation. The remote call is issued first;
// the local list only changes once it succeeds.
func (t *ReportTable) Delete(ctx context.Context, id int64, confirmer Confirmer) (DeleteResult, error) {
	result := DeleteResult{ID: id}
	if confirmer != nil {
		ok, err := confirmer.Confirm(ctx, models.MsgConfirmDelete)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Canceled = true
			result.Notification = models.NewNotification(models.NotificationInfo, models.MsgDeleteCanceled)
			t.observe("canceled")
			return result, nil
		}
	}

	if err := t.store.Delete(ctx, id); err != nil {
		t.logger.Error("failed to delete report", zap.Int64("report_id", id), zap.Error(err))
		result.Notification = models.Failure(models.MsgDeleteFailed)
		t.observe("failed")
		return result, appErrors.Relabel(err, models.MsgDeleteFailed)
	}

	t.mu.Lock()
	kept := make([]models.Report, 0, len(t.reports))
	for _, r := range t.reports {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	t.reports = kept
	t.recompute()
	t.mu.Unlock()

	result.Deleted = true
	result.Notification = models.Success(models.MsgDeleteSuccess)
	t.observe("deleted")
	return result, nil
}

func (t *ReportTable) observe(outcome string) {
	if t.observer != nil {
		t.observer.ObserveDelete(outcome)
	}
}

// recompute must be called with mu held for writing.
func (t *ReportTable) recompute() {
	t.rows = FilterReports(t.reports, t.filter)
	t.options = FacetOptions(t.reports)
}

func cloneFilter(f models.FilterState) models.FilterState {
	out := models.FilterState{Search: f.Search}
	if f.Program != nil {
		v := *f.Program
		out.Program = &v
	}
	if f.Region != nil {
		v := *f.Region
		out.Region = &v
	}
	return out
}

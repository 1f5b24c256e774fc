package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type tableEntry struct {
	table    *ReportTable
	lastUsed time.Time
}

// TableRegistry keeps one ReportTable per console session.
type TableRegistry struct {
	newTable func() *ReportTable
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
	onSize   func(int)

	mu     sync.Mutex
	tables map[string]*tableEntry
}

// NewTableRegistry builds a registry creating tables through factory. A ttl of
// zero disables expiry.
func NewTableRegistry(factory func() *ReportTable, ttl time.Duration, logger *zap.Logger) *TableRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableRegistry{
		newTable: factory,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
		tables:   make(map[string]*tableEntry),
	}
}

// Acquire returns the session's table, creating an unmounted one if needed.
func (r *TableRegistry) Acquire(session string) *ReportTable {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tables[session]
	if !ok {
		entry = &tableEntry{table: r.newTable()}
		r.tables[session] = entry
		r.reportSize()
	}
	entry.lastUsed = r.now()
	return entry.table
}

// Lookup returns the session's table if one exists.
func (r *TableRegistry) Lookup(session string) (*ReportTable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.tables[session]
	if !ok {
		return nil, false
	}
	entry.lastUsed = r.now()
	return entry.table, true
}

// Release drops the session's table.
func (r *TableRegistry) Release(session string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, session)
	r.reportSize()
}

// Len returns the number of live tables.
func (r *TableRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

// Sweep evicts tables idle for longer than the ttl and returns how many were removed.
func (r *TableRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for session, entry := range r.tables {
		if entry.lastUsed.Before(cutoff) {
			delete(r.tables, session)
			removed++
		}
	}
	if removed > 0 {
		r.reportSize()
	}
	return removed
}

// OnSizeChange registers fn to receive the table count whenever it changes.
func (r *TableRegistry) OnSizeChange(fn func(int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSize = fn
	r.reportSize()
}

// reportSize must be called with mu held.
func (r *TableRegistry) reportSize() {
	if r.onSize != nil {
		r.onSize(len(r.tables))
	}
}

// StartCleanup sweeps idle tables every interval until ctx is done.
func (r *TableRegistry) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					r.logger.Debug("evicted idle report tables", zap.Int("count", n))
				}
			}
		}
	}()
}

package service

import (
	"context"
	"sync"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/reportapi"
)

// fakeReportStore stands in for the report API client.
type fakeReportStore struct {
	mu sync.Mutex

	reports   []models.Report
	listErr   error
	getErr    error
	createErr error
	updateErr error
	deleteErr error

	listCalls   int
	getCalls    int
	createCalls int
	updateCalls int
	deleted     []int64
	payloads    []reportapi.Multipart
}

func (f *fakeReportStore) List(context.Context) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Report(nil), f.reports...), nil
}

func (f *fakeReportStore) Get(_ context.Context, id int64) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.reports {
		if r.ID == id {
			report := r
			return &report, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

func (f *fakeReportStore) Create(_ context.Context, payload reportapi.Multipart) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	f.payloads = append(f.payloads, payload)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.Report{ID: 100, Status: models.ReportStatusPending}, nil
}

func (f *fakeReportStore) Update(_ context.Context, id int64, payload reportapi.Multipart) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	f.payloads = append(f.payloads, payload)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Report{ID: id, Status: models.ReportStatusPending}, nil
}

func (f *fakeReportStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeReportStore) ProofURL(proof string) string {
	if proof == "" {
		return ""
	}
	return "http://api.test" + proof
}

func report(id int64, program, region string, count int64, status models.ReportStatus) models.Report {
	return models.Report{
		ID:             id,
		Program:        models.Program{Name: program},
		Region:         region,
		RecipientCount: models.Count(count),
		Status:         status,
	}
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func ids(reports []models.Report) []int64 {
	out := make([]int64, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.ID)
	}
	return out
}

func confirmWith(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return answer, nil })
}

package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/dto"
	"github.com/ricoeriii/pengelola-bansos/internal/models"
)

type reportLister interface {
	List(ctx context.Context) ([]models.Report, error)
}

// Summarize computes dashboard statistics. Regions are compared exactly, so
// "Jakarta" and "jakarta" count as two regions.
func Summarize(reports []models.Report) models.Summary {
	regions := make(map[string]struct{}, len(reports))
	summary := models.Summary{TotalReports: len(reports)}
	for _, r := range reports {
		summary.TotalRecipients += int64(r.RecipientCount)
		regions[r.Region] = struct{}{}
	}
	summary.CoveredRegions = len(regions)
	return summary
}

// DashboardResult is a dashboard render plus the notification to surface.
type DashboardResult struct {
	View         dto.DashboardView
	Notification *models.Notification
}

// DashboardService fetches the report list once per view and summarises it.
type DashboardService struct {
	reports reportLister
	logger  *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(reports reportLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{reports: reports, logger: logger}
}

// Snapshot fetches the full list and summarises it.
func (s *DashboardService) Snapshot(ctx context.Context) (*models.Summary, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	summary := Summarize(reports)
	return &summary, nil
}

// View renders the dashboard. A failed fetch falls back to zero values with an
// error notification rather than failing the screen.
func (s *DashboardService) View(ctx context.Context) DashboardResult {
	summary, err := s.Snapshot(ctx)
	if err != nil {
		s.logger.Error("failed to load dashboard summary", zap.Error(err))
		n := models.Failure(models.MsgListFailed)
		return DashboardResult{View: dto.NewDashboardView(models.Summary{}, false), Notification: &n}
	}
	return DashboardResult{View: dto.NewDashboardView(*summary, false)}
}

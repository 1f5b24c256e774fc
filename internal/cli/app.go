package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	"github.com/ricoeriii/pengelola-bansos/pkg/config"
	"github.com/ricoeriii/pengelola-bansos/pkg/reportapi"
)

// App holds the services shared by every subcommand.
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	client    *reportapi.Client
	table     *service.ReportTable
	dashboard *service.DashboardService
	forms     *service.ReportFormService
	exports   *service.ExportService

	in  *bufio.Reader
	out io.Writer
	err io.Writer
}

// NewApp wires the report services against the configured report API.
func NewApp(cfg *config.Config, logger *zap.Logger, in io.Reader, out, errOut io.Writer) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := reportapi.NewClient(reportapi.Config{
		BaseURL: cfg.ReportAPI.BaseURL,
		Path:    cfg.ReportAPI.Path,
		Timeout: cfg.ReportAPI.Timeout,
	}, nil, logger)

	return &App{
		cfg:       cfg,
		logger:    logger,
		client:    client,
		table:     service.NewReportTable(client, nil, logger),
		dashboard: service.NewDashboardService(client, logger),
		forms: service.NewReportFormService(client, validator.New(), service.ProofPolicy{
			MaxBytes:          cfg.Proof.MaxFileSizeBytes,
			AllowedExtensions: cfg.Proof.AllowedExtensions,
		}, logger),
		exports: service.NewExportService(service.ExportServiceParams{Logger: logger}),
		in:      bufio.NewReader(in),
		out:     out,
		err:     errOut,
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

// announce writes a notification to stderr, mirroring the console's toasts.
func (a *App) announce(n models.Notification) {
	if n.Message == "" {
		return
	}
	fmt.Fprintf(a.err, "[%s] %s\n", n.Level, n.Message)
}

package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/dto"
	"github.com/ricoeriii/pengelola-bansos/internal/models"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/storage"
)

type filterFlags struct {
	search  string
	program string
	region  string
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.search, "search", "", "case-insensitive search on program or region")
	cmd.Flags().StringVar(&f.program, "program", "", "exact program name")
	cmd.Flags().StringVar(&f.region, "region", "", "exact region")
}

func (f *filterFlags) state() models.FilterState {
	state := models.FilterState{Search: f.search}
	if f.program != "" {
		state.Program = &f.program
	}
	if f.region != "" {
		state.Region = &f.region
	}
	return state
}

// NewRootCommand assembles the laporan command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "laporan",
		Short:         "Manage aid distribution reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newDashboardCommand(app),
		newProgramsCommand(app),
		newReportsCommand(app),
		newExportCommand(app),
		newDeleteCommand(app),
		newCreateCommand(app),
		newEditCommand(app),
	)
	return root
}

func newDashboardCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show report totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result := app.dashboard.View(cmd.Context())
			if result.Notification != nil {
				app.announce(*result.Notification)
			}
			for _, card := range result.View.Cards {
				app.printf("%-18s %s\n", card.Title, card.Value)
			}
			return nil
		},
	}
}

func newProgramsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "programs",
		Short: "List selectable programs",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			for _, p := range app.forms.Programs() {
				app.printf("%d\t%s\n", p.ID, p.Name)
			}
			return nil
		},
	}
}

func newReportsCommand(app *App) *cobra.Command {
	var filters filterFlags
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List reports, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.mount(cmd); err != nil {
				return err
			}
			app.table.SetFilter(filters.state())
			snapshot := app.table.Snapshot()
			view := dto.NewReportTableView(snapshot.Rows, snapshot.Options, snapshot.Filter, len(snapshot.Reports), app.client.ProofURL)
			app.printTable(view)
			return nil
		},
	}
	filters.bind(cmd)
	return cmd
}

func newExportCommand(app *App) *cobra.Command {
	var (
		filters filterFlags
		outDir  string
	)
	cmd := &cobra.Command{
		Use:       "export <csv|xlsx|pdf>",
		Short:     "Export the filtered reports to a file",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "xlsx", "pdf"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := service.ParseExportFormat(args[0])
			if err != nil {
				return err
			}
			if err := app.mount(cmd); err != nil {
				return err
			}
			app.table.SetFilter(filters.state())

			artifact, err := app.exports.Export(cmd.Context(), app.table.Rows(), format, service.ExportContext{Filter: app.table.Filter()})
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = app.cfg.Export.OutputDir
			}
			store, err := storage.NewLocalStorage(outDir)
			if err != nil {
				return err
			}
			path, err := app.exports.Save(store, artifact)
			if err != nil {
				return err
			}
			app.printf("%s (%d rows)\n", path, artifact.Rows)
			return nil
		},
	}
	filters.bind(cmd)
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (defaults to EXPORT_OUTPUT_DIR)")
	return cmd
}

func newDeleteCommand(app *App) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			result, err := app.table.Delete(cmd.Context(), id, confirmerFor(assumeYes, app.in, app.err))
			app.announce(result.Notification)
			return err
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

type formFlags struct {
	program    int64
	recipients int64
	region     string
	date       string
	note       string
	proof      string
}

func (f *formFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.program, "program", 0, "program id, see the programs command")
	cmd.Flags().Int64Var(&f.recipients, "recipients", 0, "number of recipients")
	cmd.Flags().StringVar(&f.region, "region", "", "region")
	cmd.Flags().StringVar(&f.date, "date", "", "distribution date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.note, "note", "", "free-text note")
	cmd.Flags().StringVar(&f.proof, "proof", "", "proof document (.jpg, .png, .pdf)")
}

// apply overlays the flags the operator set onto form.
func (f *formFlags) apply(cmd *cobra.Command, form *dto.ReportForm) {
	changed := cmd.Flags().Changed
	if changed("program") {
		form.ProgramID = &f.program
	}
	if changed("recipients") {
		form.RecipientCount = &f.recipients
	}
	if changed("region") {
		form.Region = f.region
	}
	if changed("date") {
		form.DistributionDate = f.date
	}
	if changed("note") {
		form.Note = f.note
	}
}

func newCreateCommand(app *App) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var form dto.ReportForm
			flags.apply(cmd, &form)

			proof, closeProof, err := app.openProof(flags.proof)
			if err != nil {
				return err
			}
			defer closeProof()

			result, err := app.forms.Create(cmd.Context(), form, proof)
			return app.finishSubmit(result, err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newEditCommand(app *App) *cobra.Command {
	var flags formFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an existing report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			state, err := app.forms.LoadForEdit(cmd.Context(), id)
			if err != nil {
				app.announce(models.Failure(models.MsgLoadFailed))
				return err
			}
			form := state.Form
			flags.apply(cmd, &form)

			proof, closeProof, err := app.openProof(flags.proof)
			if err != nil {
				return err
			}
			defer closeProof()

			result, err := app.forms.Update(cmd.Context(), id, form, proof)
			return app.finishSubmit(result, err)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *App) mount(cmd *cobra.Command) error {
	if err := a.table.Mount(cmd.Context()); err != nil {
		a.announce(models.Failure(models.MsgListFailed))
		return err
	}
	return nil
}

func (a *App) finishSubmit(result *service.SubmitResult, err error) error {
	if result != nil {
		a.announce(result.Notification)
		for field, msg := range result.FieldErrors {
			fmt.Fprintf(a.err, "  %s: %s\n", field, msg)
		}
	}
	if err != nil {
		return err
	}
	a.printf("report %d saved\n", result.Report.ID)
	return nil
}

// openProof opens the proof file at path. An empty path yields no proof.
func (a *App) openProof(path string) (*service.ProofFile, func(), error) {
	noop := func() {}
	if path == "" {
		return nil, noop, nil
	}
	if err := a.forms.CheckProofName(path); err != nil {
		return nil, noop, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cannot open proof file")
	}
	a.logger.Debug("attaching proof", zap.String("path", path))
	return &service.ProofFile{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

func (a *App) printTable(view dto.ReportTableView) {
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROGRAM\tWILAYAH\tPENERIMA\tTANGGAL\tSTATUS\tBUKTI")
	for _, row := range view.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			row.ID, row.ProgramName, row.Region, row.RecipientCount, row.DistributionDate, row.Status, row.ProofURL)
	}
	_ = w.Flush()
	a.printf("%d of %d reports\n", view.Visible, view.Total)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Invalid("invalid report id %q", raw)
	}
	return id, nil
}

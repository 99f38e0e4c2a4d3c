package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"listforge/internal/capability"
	"listforge/internal/catalog"
	"listforge/internal/export"
	"listforge/internal/services/content"
	"listforge/internal/services/validation"
)

type exportOptions struct {
	modelsFile string
	listing    string
	format     string
	dir        string
	retry      bool
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate listing files and save them to the export folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(ctx, cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.modelsFile, "models-file", "m", "", "Path to the selection JSON file")
	cmd.Flags().StringVarP(&opts.listing, "listing", "l", "", "Listing type override (individual or parent_child)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "xlsx", "Output format (xlsx or csv)")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Export folder for this run (overrides the saved folder)")
	cmd.Flags().BoolVar(&opts.retry, "retry", false, "Redo only the failed files of the previous run")
	return cmd
}

// newRetryCommand is a shorthand for `export --retry`.
func newRetryCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "retry",
		Short: "Redo only the failed files of the previous export run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(ctx, cmd, exportOptions{retry: true, dir: dirFlag})
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Export folder for this run (overrides the saved folder)")
	return cmd
}

func runExport(ctx *commandContext, cmd *cobra.Command, opts exportOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	req := export.Request{Retry: opts.retry, Dir: strings.TrimSpace(opts.dir)}

	if opts.retry {
		if strings.TrimSpace(opts.modelsFile) != "" {
			return errors.New("--retry replays the previous run; it cannot be combined with --models-file")
		}
	} else {
		if strings.TrimSpace(opts.modelsFile) == "" {
			return errors.New("--models-file is required (or use --retry)")
		}
		sel, err := catalog.LoadSelection(opts.modelsFile)
		if err != nil {
			return err
		}
		if strings.TrimSpace(opts.listing) != "" {
			listing, err := catalog.ParseListingType(opts.listing)
			if err != nil {
				return err
			}
			sel.ListingType = listing
		}
		format, err := catalog.ParseFormat(opts.format)
		if err != nil {
			return err
		}
		req.Selection = sel
		req.Format = format
	}

	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}
	store, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// One export at a time per machine; concurrent runs would race
	// on the run history and the output files.
	runLock := flock.New(filepath.Join(cfg.Paths.LogDir, "listforge.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return errors.New("another listforge export is already running")
	}
	defer runLock.Unlock()

	out := cmd.OutOrStdout()
	picker := newTerminalPicker(cmd.InOrStdin(), out)
	gate := capability.NewGate(store, picker, logger)

	var readiness export.ReadinessChecker
	if strings.TrimSpace(cfg.Validation.BaseURL) != "" {
		readiness = validation.NewClient(validation.Config{
			BaseURL:        cfg.Validation.BaseURL,
			APIKey:         cfg.Validation.APIKey,
			TimeoutSeconds: cfg.Validation.TimeoutSeconds,
		}, nil)
	}
	generator := content.NewClient(content.Config{
		BaseURL:        cfg.Content.BaseURL,
		APIKey:         cfg.Content.APIKey,
		TimeoutSeconds: cfg.Content.TimeoutSeconds,
	}, nil)

	runner := export.NewRunner(cfg, store, gate, generator, readiness, logger)
	runner.SetProgress(func(current, total int, label string) {
		fmt.Fprintf(out, "Writing %s (%d/%d)\n", label, current, total)
	})

	if req.Dir == "" && strings.TrimSpace(cfg.Paths.ExportDir) != "" {
		req.Dir = cfg.Paths.ExportDir
	}

	outcome, err := runner.Run(cmd.Context(), req)
	switch {
	case errors.Is(err, capability.ErrCancelled):
		fmt.Fprintln(out, "Export cancelled.")
		return nil
	case errors.Is(err, export.ErrDirectDownload):
		return fmt.Errorf("the %s format is delivered as a direct download and is never saved to the export folder", opts.format)
	case errors.Is(err, capability.ErrPermissionDenied):
		return errors.New("the chosen export folder is not writable; pick another folder or fix its permissions")
	case err != nil:
		return err
	}

	printReadiness(out, outcome.Readiness)
	printOutcome(out, outcome)

	if outcome.Summary.Failed > 0 {
		return fmt.Errorf("%s; run `listforge retry` to redo the failed files", outcome.Summary)
	}
	return nil
}

func printReadiness(out io.Writer, findings []validation.Finding) {
	if len(findings) == 0 {
		return
	}
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		model := f.ModelName
		if model == "" && f.ModelID != 0 {
			model = fmt.Sprintf("#%d", f.ModelID)
		}
		rows = append(rows, []string{titleCase(string(f.Severity)), model, f.Message})
	}
	fmt.Fprintln(out, "Readiness warnings:")
	fmt.Fprintln(out, renderTable([]string{"Severity", "Model", "Message"}, rows, nil))
}

func printOutcome(out io.Writer, outcome *export.Outcome) {
	rows := make([][]string, 0, len(outcome.Results))
	for _, nr := range outcome.Results {
		detail := nr.Result.ErrorMessage
		if detail == "" {
			detail = nr.Result.Warning
		}
		if detail == "" && !nr.Result.Verified && nr.Result.VerificationReason != "" {
			detail = nr.Result.VerificationReason
		}
		status := string(nr.Result.Status)
		if nr.Skipped {
			status = "done earlier"
		}
		rows = append(rows, []string{nr.Node.Key, nr.Result.Filename, titleCase(status), detail})
	}
	fmt.Fprintln(out, renderTable([]string{"Node", "File", "Status", "Detail"}, rows, nil))
	fmt.Fprintf(out, "%s\nSaved under %s\n", outcome.Summary, outcome.BaseDir)
}

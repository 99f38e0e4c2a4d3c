package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"listforge/internal/catalog"
	"listforge/internal/services/validation"
)

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var modelsFile string
	var listingFlag string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a selection's export readiness without exporting",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Validation.BaseURL) == "" {
				return errors.New("validation service is not configured; set validation.base_url in the config file")
			}
			if strings.TrimSpace(modelsFile) == "" {
				return errors.New("--models-file is required")
			}

			sel, err := catalog.LoadSelection(modelsFile)
			if err != nil {
				return err
			}
			if strings.TrimSpace(listingFlag) != "" {
				listing, err := catalog.ParseListingType(listingFlag)
				if err != nil {
					return err
				}
				sel.ListingType = listing
			}

			client := validation.NewClient(validation.Config{
				BaseURL:        cfg.Validation.BaseURL,
				APIKey:         cfg.Validation.APIKey,
				TimeoutSeconds: cfg.Validation.TimeoutSeconds,
			}, nil)

			report, err := client.Validate(cmd.Context(), sel.ModelIDs(), sel.ListingType)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Items) == 0 {
				fmt.Fprintln(out, "Selection is ready to export.")
				return nil
			}

			rows := make([][]string, 0, len(report.Items))
			for _, item := range report.Items {
				model := item.ModelName
				if model == "" && item.ModelID != 0 {
					model = fmt.Sprintf("#%d", item.ModelID)
				}
				rows = append(rows, []string{titleCase(string(item.Severity)), model, item.Message})
			}
			fmt.Fprintln(out, renderTable([]string{"Severity", "Model", "Message"}, rows, nil))
			fmt.Fprintf(out, "%d warnings, %d errors\n", report.Summary.Warnings, report.Summary.Errors)

			if report.Summary.Errors > 0 {
				return fmt.Errorf("selection has %d blocking errors", report.Summary.Errors)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelsFile, "models-file", "m", "", "Path to the selection JSON file")
	cmd.Flags().StringVarP(&listingFlag, "listing", "l", "", "Listing type override (individual or parent_child)")
	return cmd
}

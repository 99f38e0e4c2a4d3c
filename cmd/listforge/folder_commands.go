package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"listforge/internal/capability"
)

func newFolderCommand(ctx *commandContext) *cobra.Command {
	folderCmd := &cobra.Command{
		Use:   "folder",
		Short: "Manage the saved export folder",
	}

	folderCmd.AddCommand(newFolderShowCommand(ctx))
	folderCmd.AddCommand(newFolderResetCommand(ctx))
	return folderCmd
}

func newFolderShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved export folder and whether it is still writable",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			folder, err := store.LoadCapability(cmd.Context())
			if err != nil {
				return fmt.Errorf("load saved folder: %w", err)
			}
			out := cmd.OutOrStdout()
			if folder == "" {
				fmt.Fprintln(out, "No export folder saved; the next export will ask for one.")
				return nil
			}
			fmt.Fprintf(out, "Folder:   %s\n", folder)
			fmt.Fprintf(out, "Writable: %s\n", yesNo(capability.VerifyWritable(folder)))
			return nil
		},
	}
}

func newFolderResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the saved export folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			gate := capability.NewGate(store, nil, logger)
			if err := gate.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset saved folder: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved export folder cleared; the next export will ask for one.")
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"resprint/internal/nrlindex"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Signature index maintenance",
	}

	indexCmd.AddCommand(newIndexBuildCommand(ctx))
	indexCmd.AddCommand(newIndexStatusCommand(ctx))

	return indexCmd
}

func newIndexBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Scan the reference library and rebuild the signature index",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			sensors, dataloggers, err := store.Build(buildProgress(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Indexed %d sensor signatures and %d datalogger signatures.\n", sensors, dataloggers)
			fmt.Fprintf(out, "Index written to %s\n", store.IndexPath())
			return nil
		},
	}
}

// buildProgress adapts the store's progress callback to the terminal: a
// live bar on a TTY, phase messages otherwise. Per-file messages are
// dropped in the plain mode to keep logs scannable.
func buildProgress(cmd *cobra.Command) nrlindex.ProgressFunc {
	if !isTerminal(os.Stderr) {
		errOut := cmd.ErrOrStderr()
		return func(current, total int, message string) {
			if total == 0 || current == 0 || current == total {
				fmt.Fprintln(errOut, message)
			}
		}
	}

	var bar *progressbar.ProgressBar
	return func(current, total int, message string) {
		if total == 0 {
			fmt.Fprintln(os.Stderr, message)
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Indexing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		bar.Describe(message)
		_ = bar.Set(current)
	}
}

func newIndexStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show index freshness and signature counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			needsRebuild := store.NeedsRebuild()
			if err := store.Load(); err != nil {
				fmt.Fprintf(out, "Index path: %s\n", store.IndexPath())
				fmt.Fprintln(out, "Index not built; run `resprint index build`.")
				return nil
			}

			snapshot := store.CurrentSnapshot()
			sensors, dataloggers := snapshot.Stats()
			rows := [][]string{
				{"Index path", store.IndexPath()},
				{"Format version", snapshot.Version},
				{"Content hash", snapshot.ContentHash},
				{"Sensor signatures", strconv.Itoa(sensors)},
				{"Datalogger signatures", strconv.Itoa(dataloggers)},
				{"Family signatures", strconv.Itoa(len(snapshot.DataloggerFamilies))},
				{"Rebuild needed", yesNo(needsRebuild)},
			}
			fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

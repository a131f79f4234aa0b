package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"resprint/internal/config"
	"resprint/internal/detect"
	"resprint/internal/nrlindex"
	"resprint/internal/stationxml"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var multiline bool
	var noFamily bool
	var showCandidates bool

	cmd := &cobra.Command{
		Use:   "detect <response.xml>",
		Short: "Identify the sensor and datalogger behind a response file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			resp, err := stationxml.ReadResponse(path)
			if err != nil {
				return fmt.Errorf("read response: %w", err)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			if store.NeedsRebuild() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Index is missing or stale; run `resprint index build` for current results.")
			}

			result := detect.New(store, ctx.commandLogger()).Detect(resp)
			out := cmd.OutOrStdout()
			if !result.FoundAny() {
				fmt.Fprintln(out, "No match found.")
				return nil
			}
			fmt.Fprintln(out, detect.FormatResult(result, multiline, !noFamily))

			if showCandidates {
				if result.SensorAmbiguous() {
					fmt.Fprintln(out, "\nSensor candidates:")
					fmt.Fprintln(out, candidateTable(out, result.SensorCandidates, result.Sensor, result.SensorConfidence))
				}
				if result.DataloggerAmbiguous() {
					fmt.Fprintln(out, "\nDatalogger candidates:")
					fmt.Fprintln(out, candidateTable(out, result.DataloggerCandidates, result.Datalogger, result.DataloggerConfidence))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&multiline, "multiline", false, "Print one line per identified instrument")
	cmd.Flags().BoolVar(&noFamily, "no-family", false, "Name the default candidate instead of collapsing ambiguous groups")
	cmd.Flags().BoolVar(&showCandidates, "candidates", false, "List every candidate sharing the matched signature")
	return cmd
}

func candidateTable(out io.Writer, candidates []nrlindex.Descriptor, chosen *nrlindex.Descriptor, confidence float64) string {
	headers := []string{"Manufacturer", "Model", "Variant", "Confidence"}
	rows := make([][]string, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		conf := ""
		if chosen != nil && c.Path == chosen.Path {
			conf = strconv.FormatFloat(confidence, 'f', 2, 64)
		}
		rows = append(rows, []string{
			detect.DisplayManufacturer(c.Manufacturer),
			c.Model,
			c.VariantParams,
			conf,
		})
	}
	return renderTable(out, headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
}

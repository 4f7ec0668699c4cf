package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurlang/letters/pipeline"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if e.deps.Registry == nil {
			return &pipeline.Error{Kind: pipeline.KindConfiguration, Op: "history", Message: "registry.path is not set"}
		}
		runs, err := e.deps.Registry.List(cmd.Context(), historyLimit)
		if err != nil {
			return &pipeline.Error{Kind: pipeline.KindStorage, Op: "history", Message: "list runs", Err: err}
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tSTARTED\tDURATION\tSAMPLES\tACCURACY\tLOCATION\tERROR")
		for _, r := range runs {
			duration := "-"
			if !r.FinishedAt.IsZero() {
				duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
			}
			accuracy := "-"
			if r.Accuracy != nil {
				accuracy = fmt.Sprintf("%.4f", *r.Accuracy)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				r.ID, r.Kind, r.Status, r.StartedAt.Format(time.RFC3339), duration,
				r.Samples, accuracy, r.Location, r.Error)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs")
}

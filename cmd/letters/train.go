package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/pipeline"
)

var trainCmd = &cobra.Command{
	Use:   "train-model",
	Short: "Fit a hashtron model on the stored dataset and evaluate it",
	Long: `train-model loads the dataset saved by save-datasets, fits one hashtron per
letter and window position, evaluates the model on the eval split and stores
the model, a toml report and the metrics under the model prefix.

Training time grows with the alphabet, the samples per class and the window
positions. model.max_factor trades it for program length: raising it gives
shorter programs but each program step needs many more salts to be found.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"dataset.prefix": "dataset-prefix",
			"model.prefix":   "model-prefix",
			"model.seed":     "seed",
			"model.workers":  "workers",
			"model.window":   "window",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := pipeline.TrainModel(cmd.Context(), e.deps, e.cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run:       %s\n", summary.RunID)
		fmt.Fprintf(out, "location:  %s\n", summary.Location)
		fmt.Fprintf(out, "hashtrons: %d (%d commands, %s)\n", summary.Stats.Hashtrons, summary.Stats.ProgramLength, summary.Stats.Duration)
		fmt.Fprintf(out, "accuracy:  %.4f (%d/%d)\n", summary.Accuracy, summary.Correct, summary.Total)
		fmt.Fprintf(out, "digest:    %s\n", summary.Digest)
		letters := make([]string, 0, len(summary.PerClass))
		for l := range summary.PerClass {
			letters = append(letters, l)
		}
		sort.Strings(letters)
		for _, l := range letters {
			r := summary.PerClass[l]
			fmt.Fprintf(out, "  %q\t%d/%d\t%.3f\n", l, r.Correct, r.Total, r.Recall)
		}
		return nil
	},
}

func init() {
	f := trainCmd.Flags()
	f.String("dataset-prefix", "dataset", "storage prefix of the dataset")
	f.String("model-prefix", "model", "storage prefix of the model")
	f.Int64("seed", 1, "random seed of the hashtron search")
	f.Int("workers", config.DefaultWorkers(), "hashtrons fitted concurrently")
	f.Int("window", 3, "side of the pixel window each hashtron sees")
}

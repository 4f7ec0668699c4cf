package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/pipeline"
)

var saveCmd = &cobra.Command{
	Use:   "save-datasets",
	Short: "Render the letter images and store the train and eval datasets",
	Long: `save-datasets renders samples_per_class images of every letter of the
alphabet, splits them into train and eval sets and replaces the dataset under
the dataset prefix. The same seed produces identical bytes.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"dataset.alphabet":          "alphabet",
			"dataset.samples_per_class": "samples-per-class",
			"dataset.width":             "width",
			"dataset.height":            "height",
			"dataset.eval_fraction":     "eval-fraction",
			"dataset.seed":              "seed",
			"dataset.prefix":            "dataset-prefix",
			"dataset.noise":             "noise",
			"dataset.jitter":            "jitter",
			"dataset.fonts":             "font",
		})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		summary, err := pipeline.SaveDatasets(cmd.Context(), e.deps, e.cfg)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "run:      %s\n", summary.RunID)
		fmt.Fprintf(out, "location: %s\n", summary.Location)
		fmt.Fprintf(out, "train:    %d\n", summary.Train)
		fmt.Fprintf(out, "eval:     %d\n", summary.Eval)
		names := make([]string, 0, len(summary.PerClass))
		for l := range summary.PerClass {
			names = append(names, l)
		}
		sort.Strings(names)
		for _, l := range names {
			fmt.Fprintf(out, "  %q\t%d\n", l, summary.PerClass[l])
		}
		return nil
	},
}

func init() {
	f := saveCmd.Flags()
	f.String("alphabet", "ABCDEFGHIJKLMNOPQRSTUVWXYZ", "distinct printable ASCII letters to generate")
	f.Int("samples-per-class", 100, "images rendered per letter")
	f.Int("width", 8, "image width in pixels")
	f.Int("height", 8, "image height in pixels")
	f.Float64("eval-fraction", 0.2, "fraction of the samples held out for evaluation")
	f.Int64("seed", 1, "random seed of rendering and splitting")
	f.String("dataset-prefix", "dataset", "storage prefix of the dataset")
	f.Float64("noise", 0.02, "probability of flipping a pixel")
	f.Int("jitter", 1, "maximum glyph shift in pixels")
	f.StringSlice("font", letters.DefaultFaces, "font faces to render with")
}

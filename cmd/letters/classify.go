package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurlang/letters/net/ensemble"
	"github.com/neurlang/letters/pipeline"
)

var (
	classifyLetters string
	classifyFont    string
)

var classifyCmd = &cobra.Command{
	Use:   "classify [png...]",
	Short: "Classify images with the trained model",
	Long: `classify loads the model under the model prefix and prints the letter it
sees in each PNG image. With --letter it renders the letters instead, which
checks the model against clean glyphs.`,
	Example: `  letters classify a.png b.png
  letters classify --letter ABC --font gomono`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && classifyLetters == "" {
			return &pipeline.Error{Kind: pipeline.KindConfiguration, Op: "classify", Message: "give png files or --letter"}
		}
		return bindFlags(cmd, map[string]string{"model.prefix": "model-prefix"})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		model, err := pipeline.LoadModel(cmd.Context(), e.deps, e.cfg)
		if err != nil {
			return err
		}

		var predictions []pipeline.Prediction
		for _, name := range args {
			p, err := classifyFile(model, name)
			if err != nil {
				return err
			}
			predictions = append(predictions, p)
		}
		for i := 0; i < len(classifyLetters); i++ {
			p, err := pipeline.ClassifyLetter(model, classifyLetters[i], classifyFont)
			if err != nil {
				return err
			}
			predictions = append(predictions, p)
		}

		out := cmd.OutOrStdout()
		for _, p := range predictions {
			fmt.Fprintf(out, "%s\t%c\t%.3f\n", p.Source, p.Letter, p.Confidence)
		}
		return nil
	},
}

func classifyFile(model *ensemble.Ensemble, name string) (pipeline.Prediction, error) {
	f, err := os.Open(name)
	if err != nil {
		return pipeline.Prediction{}, &pipeline.Error{Kind: pipeline.KindStorage, Op: "classify", Message: "open image", Err: err}
	}
	defer f.Close()
	return pipeline.ClassifyImage(model, name, f)
}

func init() {
	f := classifyCmd.Flags()
	f.StringVar(&classifyLetters, "letter", "", "render and classify these letters")
	f.StringVar(&classifyFont, "font", "gomono", "font face used by --letter")
	f.String("model-prefix", "model", "storage prefix of the model")
}

package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurlang/letters/pipeline"
)

var (
	exportPackage string
	exportOutput  string
)

var exportCmd = &cobra.Command{
	Use:   "export-go",
	Short: "Write the trained model as Go source",
	Long: `export-go writes the hashtron programs of the model as Go source, so a
program can embed the classifier without reading the artifact store.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
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

		w := cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return &pipeline.Error{Kind: pipeline.KindStorage, Op: "export-go", Message: "create output", Err: err}
			}
			defer f.Close()
			w = f
		}
		buf := bufio.NewWriter(w)
		if err := model.ExportGo(buf, exportPackage); err != nil {
			return &pipeline.Error{Kind: pipeline.KindStorage, Op: "export-go", Message: "write source", Err: err}
		}
		if err := buf.Flush(); err != nil {
			return &pipeline.Error{Kind: pipeline.KindStorage, Op: "export-go", Message: "write source", Err: err}
		}
		e.log.Info("model exported", zap.String("package", exportPackage), zap.String("output", exportOutput))
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportPackage, "package", "model", "package name of the generated file")
	f.StringVarP(&exportOutput, "output", "o", "-", "output file, - for stdout")
	f.String("model-prefix", "model", "storage prefix of the model")
}

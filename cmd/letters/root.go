package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/logger"
	"github.com/neurlang/letters/pipeline"
	"github.com/neurlang/letters/registry"
	"github.com/neurlang/letters/storage"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	cfgFile string
	v       = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "letters",
	Short: "ASCII letter classifier built from hashtrons",
	Long: `letters renders labeled ASCII letter images, trains a hashtron ensemble
on them and classifies new images.

Commands run independently and share only the artifacts in the store:
  save-datasets  - render and store the train and eval datasets
  train-model    - fit and evaluate a model on the stored dataset
  classify       - classify PNG images or rendered letters
  export-go      - write the model as Go source
  history        - list previous runs

Every setting is also read from letters.yaml and LETTERS_* variables,
e.g. LETTERS_DATASET_ALPHABET=ABC.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default letters.yaml in . or $HOME/.config/letters)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "console", "log format: console or json")
	flags.String("storage-backend", "file", "artifact store: file or minio")
	flags.String("storage-root", "./artifacts", "artifact directory of the file store")
	flags.String("registry", "", "sqlite file recording the runs (disabled when empty)")
	mustBind(v, map[string]string{
		"log.level":       "log-level",
		"log.format":      "log-format",
		"storage.backend": "storage-backend",
		"storage.root":    "storage-root",
		"registry.path":   "registry",
	}, flags.Lookup)

	rootCmd.AddCommand(saveCmd, trainCmd, classifyCmd, exportCmd, historyCmd, versionCmd)
}

// Execute runs the CLI
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func mustBind(v *viper.Viper, keys map[string]string, lookup func(string) *pflag.Flag) {
	for key, name := range keys {
		if err := v.BindPFlag(key, lookup(name)); err != nil {
			panic(err)
		}
	}
}

// bindFlags binds the flags of the running command; commands bind at run time
// because several of them reuse a flag name for different keys
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// env is what every command needs
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	deps pipeline.Deps
}

func setup(cmd *cobra.Command) (*env, func(), error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, nil, &pipeline.Error{Kind: pipeline.KindConfiguration, Op: cmd.Name(), Message: "load configuration", Err: err}
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	store, err := storage.Open(cmd.Context(), cfg.Storage.Backend, cfg.Storage.Root, storage.MinioConfig{
		Endpoint:  cfg.Storage.MinIO.Endpoint,
		AccessKey: cfg.Storage.MinIO.AccessKey,
		SecretKey: cfg.Storage.MinIO.SecretKey,
		UseSSL:    cfg.Storage.MinIO.UseSSL,
		Bucket:    cfg.Storage.MinIO.Bucket,
	})
	if err != nil {
		return nil, nil, &pipeline.Error{Kind: pipeline.KindStorage, Op: cmd.Name(), Message: "open store", Err: err}
	}

	e := &env{cfg: cfg, log: log, deps: pipeline.Deps{Store: store, Logger: log}}
	if cfg.Registry.Path != "" {
		reg, err := registry.Open(cfg.Registry.Path)
		if err != nil {
			return nil, nil, &pipeline.Error{Kind: pipeline.KindStorage, Op: cmd.Name(), Message: "open registry", Err: err}
		}
		e.deps.Registry = reg
	}
	return e, func() {
		if e.deps.Registry != nil {
			_ = e.deps.Registry.Close()
		}
		_ = log.Sync()
	}, nil
}

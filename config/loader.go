package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/klauspost/cpuid/v2"
	"github.com/spf13/viper"

	"github.com/neurlang/letters/datasets/letters"
)

// EnvPrefix prefixes every environment variable, dots become underscores:
// LETTERS_DATASET_SAMPLES_PER_CLASS
const EnvPrefix = "LETTERS"

// New returns a viper instance with defaults and environment binding. Command
// flags are bound to it by the caller before Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultWorkers is the number of physical cores, or of logical CPUs when the
// core count is unknown
func DefaultWorkers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func setDefaults(v *viper.Viper) {
	// Storage
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.root", "./artifacts")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("storage.minio.bucket", "letters")

	// Dataset
	v.SetDefault("dataset.prefix", "dataset")
	v.SetDefault("dataset.alphabet", "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	v.SetDefault("dataset.samples_per_class", 100)
	v.SetDefault("dataset.width", 8)
	v.SetDefault("dataset.height", 8)
	v.SetDefault("dataset.eval_fraction", 0.2)
	v.SetDefault("dataset.seed", 1)
	v.SetDefault("dataset.noise", 0.02)
	v.SetDefault("dataset.jitter", 1)
	v.SetDefault("dataset.fonts", letters.DefaultFaces)

	// Model
	v.SetDefault("model.prefix", "model")
	v.SetDefault("model.window", 3)
	v.SetDefault("model.threshold", 128)
	v.SetDefault("model.seed", 1)
	v.SetDefault("model.workers", DefaultWorkers())
	v.SetDefault("model.threads", 1)
	v.SetDefault("model.deadline", 1<<14)
	v.SetDefault("model.retries", 6)
	v.SetDefault("model.factor", 1)
	v.SetDefault("model.max_factor", 4)
	v.SetDefault("model.subtractor", 1)

	// Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("registry.path", "")
	v.SetDefault("metrics.enabled", true)
}

// Load reads the config file, if any, and returns the validated config. An
// explicit file must exist; otherwise letters.yaml is looked up in the working
// directory and in $HOME/.config/letters.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("letters")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "letters"))
		}
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Package config loads the pipeline configuration from defaults, an optional
// yaml file, LETTERS_ environment variables and command flags.
package config

import (
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/learning"
)

// Config is the complete configuration of both pipeline phases
type Config struct {
	Storage  StorageConfig  `mapstructure:"storage"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Model    ModelConfig    `mapstructure:"model"`
	Log      LogConfig      `mapstructure:"log"`
	Registry RegistryConfig `mapstructure:"registry"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// StorageConfig selects where artifacts live
type StorageConfig struct {
	Backend string      `mapstructure:"backend" validate:"oneof=file minio"`
	Root    string      `mapstructure:"root"`
	MinIO   MinIOConfig `mapstructure:"minio"`
}

// MinIOConfig holds object store settings, used by the minio backend
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// DatasetConfig holds the dataset preparation settings
type DatasetConfig struct {
	Prefix          string   `mapstructure:"prefix" validate:"required"`
	Alphabet        string   `mapstructure:"alphabet" validate:"alphabet"`
	SamplesPerClass int      `mapstructure:"samples_per_class" validate:"min=1"`
	Width           int      `mapstructure:"width" validate:"min=4,max=64"`
	Height          int      `mapstructure:"height" validate:"min=4,max=64"`
	EvalFraction    float64  `mapstructure:"eval_fraction" validate:"min=0,max=0.9"`
	Seed            int64    `mapstructure:"seed"`
	Noise           float64  `mapstructure:"noise" validate:"min=0,max=0.5"`
	Jitter          int      `mapstructure:"jitter" validate:"min=0,max=4"`
	Fonts           []string `mapstructure:"fonts" validate:"min=1,dive,oneof=basic gomono gomonobold goregular"`
}

// ModelConfig holds the training settings
type ModelConfig struct {
	Prefix     string `mapstructure:"prefix" validate:"required"`
	Window     int    `mapstructure:"window" validate:"min=1,max=4"`
	Threshold  int    `mapstructure:"threshold" validate:"min=0,max=255"`
	Seed       int64  `mapstructure:"seed"`
	Workers    int    `mapstructure:"workers" validate:"min=1"`
	Threads    int    `mapstructure:"threads" validate:"min=1"`
	Deadline   int    `mapstructure:"deadline" validate:"min=1,max=1073741824"`
	Retries    int    `mapstructure:"retries" validate:"min=1"`
	Factor     uint32 `mapstructure:"factor" validate:"min=1"`
	MaxFactor  uint32 `mapstructure:"max_factor" validate:"min=1,gtefield=Factor"`
	Subtractor uint32 `mapstructure:"subtractor"`
}

// LogConfig configures the logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// RegistryConfig configures the run history; an empty path disables it
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// MetricsConfig configures the metrics artifact
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Options returns the generation options. The config must be valid.
func (d DatasetConfig) Options() letters.Options {
	alphabet, _ := letters.ParseAlphabet(d.Alphabet)
	return letters.Options{
		Alphabet:        alphabet,
		Width:           d.Width,
		Height:          d.Height,
		SamplesPerClass: d.SamplesPerClass,
		Noise:           d.Noise,
		Jitter:          d.Jitter,
		Faces:           d.Fonts,
	}
}

// HyperParameters returns the learning tunables
func (m ModelConfig) HyperParameters() learning.HyperParameters {
	return learning.HyperParameters{
		Threads:    m.Threads,
		Deadline:   m.Deadline,
		Retries:    m.Retries,
		Factor:     m.Factor,
		MaxFactor:  m.MaxFactor,
		Subtractor: m.Subtractor,
	}
}

// Geometry returns the feature geometry for images of the given size
func (m ModelConfig) Geometry(width, height int) letters.Geometry {
	return letters.Geometry{
		Width:     width,
		Height:    height,
		Window:    m.Window,
		Threshold: byte(m.Threshold),
	}
}

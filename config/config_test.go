package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "letters.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func fields(err error) []string {
	var out []string
	if errs, ok := err.(ValidationErrors); ok {
		for _, e := range errs {
			out = append(out, e.Field)
		}
	}
	return out
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), writeFile(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZ", cfg.Dataset.Alphabet)
	assert.Equal(t, 100, cfg.Dataset.SamplesPerClass)
	assert.Equal(t, 8, cfg.Dataset.Width)
	assert.InDelta(t, 0.2, cfg.Dataset.EvalFraction, 1e-9)
	assert.Equal(t, []string{"basic", "gomono", "gomonobold", "goregular"}, cfg.Dataset.Fonts)
	assert.Equal(t, 3, cfg.Model.Window)
	assert.Equal(t, 1<<14, cfg.Model.Deadline)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Registry.Path)

	o := cfg.Dataset.Options()
	assert.Equal(t, 26, o.Alphabet.Len())
	assert.Equal(t, 36, cfg.Model.Geometry(8, 8).Positions())
	assert.Equal(t, 6, cfg.Model.HyperParameters().Retries)
	assert.Equal(t, uint32(4), cfg.Model.HyperParameters().MaxFactor)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("LETTERS_DATASET_SAMPLES_PER_CLASS", "7")
	t.Setenv("LETTERS_MODEL_WORKERS", "3")
	cfg, err := Load(New(), writeFile(t, `
dataset:
  alphabet: "xyz"
  samples_per_class: 5
  fonts: [basic]
storage:
  root: /tmp/letters
`))
	require.NoError(t, err)
	assert.Equal(t, "xyz", cfg.Dataset.Alphabet)
	assert.Equal(t, 7, cfg.Dataset.SamplesPerClass, "environment wins over the file")
	assert.Equal(t, 3, cfg.Model.Workers)
	assert.Equal(t, []string{"basic"}, cfg.Dataset.Fonts)
	assert.Equal(t, "/tmp/letters", cfg.Storage.Root)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		set   map[string]any
		field string
	}{
		{"empty alphabet", map[string]any{"dataset.alphabet": ""}, "dataset.alphabet"},
		{"duplicate letters", map[string]any{"dataset.alphabet": "ABA"}, "dataset.alphabet"},
		{"space", map[string]any{"dataset.alphabet": "A B"}, "dataset.alphabet"},
		{"zero samples", map[string]any{"dataset.samples_per_class": 0}, "dataset.samples_per_class"},
		{"tiny image", map[string]any{"dataset.width": 2}, "dataset.width"},
		{"eval fraction", map[string]any{"dataset.eval_fraction": 0.95}, "dataset.eval_fraction"},
		{"font", map[string]any{"dataset.fonts": []string{"comic"}}, "dataset.fonts[0]"},
		{"window", map[string]any{"model.window": 5}, "model.window"},
		{"backend", map[string]any{"storage.backend": "ftp"}, "storage.backend"},
		{"minio endpoint", map[string]any{"storage.backend": "minio"}, "storage.minio.endpoint"},
		{"file root", map[string]any{"storage.root": ""}, "storage.root"},
		{"log level", map[string]any{"log.level": "loud"}, "log.level"},
		{"same prefix", map[string]any{"model.prefix": "dataset"}, "model.prefix"},
		{"model inside dataset", map[string]any{"model.prefix": "dataset/model"}, "model.prefix"},
		{"dataset inside model", map[string]any{"dataset.prefix": "model/data"}, "model.prefix"},
		{"unclean prefix", map[string]any{"model.prefix": "./dataset/"}, "model.prefix"},
		{"root prefix", map[string]any{"dataset.prefix": "/"}, "model.prefix"},
		{"deadline", map[string]any{"model.deadline": 1 << 32}, "model.deadline"},
		{"max factor", map[string]any{"model.factor": 8}, "model.max_factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			for k, val := range tt.set {
				v.Set(k, val)
			}
			_, err := Load(v, writeFile(t, "{}\n"))
			require.Error(t, err)
			assert.IsType(t, ValidationErrors{}, err)
			assert.Contains(t, fields(err), tt.field)
		})
	}
}

func TestValidateSiblingPrefixes(t *testing.T) {
	v := New()
	v.Set("dataset.prefix", "runs/dataset")
	v.Set("model.prefix", "runs/dataset-model")
	cfg, err := Load(v, writeFile(t, "{}\n"))
	require.NoError(t, err)
	assert.Equal(t, "runs/dataset-model", cfg.Model.Prefix)
}

func TestDefaultWorkers(t *testing.T) {
	cfg, err := Load(New(), writeFile(t, "{}\n"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)
	assert.Equal(t, DefaultWorkers(), cfg.Model.Workers)
}

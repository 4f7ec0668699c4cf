package pipeline

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/registry"
	"github.com/neurlang/letters/storage"
)

// DatasetSummary describes a saved dataset
type DatasetSummary struct {
	RunID    string
	Location string
	Train    int
	Eval     int

	// PerClass counts the samples of every letter
	PerClass map[string]int
}

// SaveDatasets renders samples_per_class images of every letter of the
// alphabet, splits them into train and eval, and replaces the dataset under
// the dataset prefix. The manifest is removed first and written last, so a
// failure in between leaves no dataset rather than a mixed one; keys of older
// datasets are deleted.
func SaveDatasets(ctx context.Context, deps Deps, cfg *config.Config) (summary *DatasetSummary, err error) {
	const op = registry.KindSaveDatasets
	if err := config.Validate(cfg); err != nil {
		return nil, newError(KindConfiguration, op, "invalid configuration", err)
	}
	var log = deps.logger()

	r, err := deps.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	var prefix = cfg.Dataset.Prefix
	var location = deps.Store.Location(prefix)
	log = log.With(zap.String("run_id", r.id.String()), zap.String("op", op))
	defer func() {
		var samples int
		if summary != nil {
			samples = summary.Train + summary.Eval
		}
		err = r.finish(ctx, samples, nil, location, err)
		if err != nil {
			summary = nil
		}
	}()

	log.Info("generating dataset",
		zap.String("alphabet", cfg.Dataset.Alphabet),
		zap.Int("samples_per_class", cfg.Dataset.SamplesPerClass),
		zap.Int("width", cfg.Dataset.Width),
		zap.Int("height", cfg.Dataset.Height))

	var rng = rand.New(rand.NewSource(cfg.Dataset.Seed))
	var opts = cfg.Dataset.Options()
	samples, err := letters.Generate(opts, rng)
	if err != nil {
		return nil, newError(KindConfiguration, op, "generate samples", err)
	}
	train, eval := letters.Split(samples, cfg.Dataset.EvalFraction, rng)
	var dataset = &letters.Dataset{
		Alphabet: opts.Alphabet,
		Width:    opts.Width,
		Height:   opts.Height,
		Train:    train,
		Eval:     eval,
	}

	files, manifest, err := letters.Encode(dataset, letters.Manifest{
		Created:         deps.now().UTC(),
		SamplesPerClass: cfg.Dataset.SamplesPerClass,
		Seed:            cfg.Dataset.Seed,
	})
	if err != nil {
		return nil, newError(KindStorage, op, "encode dataset", err)
	}

	r.metrics.SamplesGenerated("train", len(train))
	r.metrics.SamplesGenerated("eval", len(eval))
	if err := replace(ctx, deps.Store, prefix, files, manifest, func() ([]byte, error) {
		if !cfg.Metrics.Enabled {
			return nil, nil
		}
		return metricsText(r)
	}); err != nil {
		return nil, newError(KindStorage, op, "write dataset to "+location, err)
	}

	summary = &DatasetSummary{
		RunID:    r.id.String(),
		Location: location,
		Train:    len(train),
		Eval:     len(eval),
		PerClass: make(map[string]int, opts.Alphabet.Len()),
	}
	for _, s := range samples {
		summary.PerClass[string(s.Label)]++
	}
	log.Info("dataset saved",
		zap.String("location", location),
		zap.Int("train", summary.Train),
		zap.Int("eval", summary.Eval))
	return summary, nil
}

func metricsText(r *run) ([]byte, error) {
	r.metrics.PhaseDuration(r.op, r.deps.now().Sub(r.started))
	return r.metrics.Text()
}

// replace swaps the dataset under prefix: manifest out, data files in, other
// keys out, manifest in. extra, when it returns data, is stored as the
// metrics file of the dataset.
func replace(ctx context.Context, store storage.Store, prefix string, files map[string][]byte, manifest []byte, extra func() ([]byte, error)) error {
	var manifestKey = storage.Join(prefix, letters.ManifestName)
	if err := store.Delete(ctx, manifestKey); err != nil {
		return err
	}

	var keep = map[string]bool{manifestKey: true}
	for _, name := range sortedNames(files) {
		key := storage.Join(prefix, name)
		if err := store.Put(ctx, key, files[name]); err != nil {
			return err
		}
		keep[key] = true
	}
	metrics, err := extra()
	if err != nil {
		return err
	}
	if metrics != nil {
		key := storage.Join(prefix, MetricsName)
		if err := store.Put(ctx, key, metrics); err != nil {
			return err
		}
		keep[key] = true
	}

	stale, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, key := range stale {
		if !keep[key] {
			if err := store.Delete(ctx, key); err != nil {
				return err
			}
		}
	}
	return store.Put(ctx, manifestKey, manifest)
}

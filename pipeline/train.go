package pipeline

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/neurlang/letters/config"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/learning"
	"github.com/neurlang/letters/net/ensemble"
	"github.com/neurlang/letters/registry"
	"github.com/neurlang/letters/storage"
	"github.com/neurlang/letters/trainer"
)

// TrainSummary describes a trained model and its evaluation
type TrainSummary struct {
	RunID    string
	Location string
	Accuracy float64
	Correct  int
	Total    int
	PerClass map[string]trainer.ClassResult

	// Digest is the hex sha256 of the eval predictions
	Digest string
	Stats  trainer.Stats
}

// TrainModel loads the dataset under the dataset prefix, fits an ensemble on
// its train subset, evaluates it on the eval subset and writes the model, the
// report and the metrics under the model prefix. Nothing is written when the
// dataset is missing.
func TrainModel(ctx context.Context, deps Deps, cfg *config.Config) (summary *TrainSummary, err error) {
	const op = registry.KindTrainModel
	if err := config.Validate(cfg); err != nil {
		return nil, newError(KindConfiguration, op, "invalid configuration", err)
	}
	var log = deps.logger()

	manifestKey := storage.Join(cfg.Dataset.Prefix, letters.ManifestName)
	exists, err := deps.Store.Exists(ctx, manifestKey)
	if err != nil {
		return nil, newError(KindStorage, op, "look up dataset", err)
	}
	if !exists {
		return nil, newError(KindMissingDataset, op,
			"no dataset at "+deps.Store.Location(cfg.Dataset.Prefix)+", run save-datasets first", nil)
	}

	r, err := deps.begin(ctx, op)
	if err != nil {
		return nil, err
	}
	var location = deps.Store.Location(cfg.Model.Prefix)
	log = log.With(zap.String("run_id", r.id.String()), zap.String("op", op))
	defer func() {
		var samples int
		var accuracy *float64
		if summary != nil {
			samples = summary.Total
			accuracy = &summary.Accuracy
		}
		err = r.finish(ctx, samples, accuracy, location, err)
		if err != nil {
			summary = nil
		}
	}()

	dataset, err := loadDataset(ctx, deps.Store, cfg.Dataset.Prefix)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded",
		zap.String("alphabet", dataset.Alphabet.String()),
		zap.Int("train", len(dataset.Train)),
		zap.Int("eval", len(dataset.Eval)))

	if letters.Classes(dataset.Train) < 2 {
		return nil, newError(KindTraining, op, "training subset has fewer than two classes", trainer.ErrTooFewClasses)
	}

	var geometry = cfg.Model.Geometry(dataset.Width, dataset.Height)
	model, err := ensemble.New(dataset.Alphabet, geometry, cfg.Model.Seed)
	if err != nil {
		return nil, newError(KindConfiguration, op, "model does not fit the dataset images", err)
	}

	var hyper = cfg.Model.HyperParameters()
	stats, err := trainer.Fit(ctx, model, dataset.Train, trainer.Options{
		Workers:         cfg.Model.Workers,
		Seed:            cfg.Model.Seed,
		HyperParameters: hyper,
		Logger:          log,
		Observer:        r.metrics,
	})
	switch {
	case errors.Is(err, trainer.ErrTooFewClasses), errors.Is(err, learning.ErrNoSolution):
		return nil, newError(KindTraining, op, "fit failed", err)
	case err != nil:
		return nil, newError(KindTraining, op, "fit aborted", err)
	}

	ev := trainer.Evaluate(model, dataset.Eval, cfg.Model.Workers)
	if ev.Total == 0 {
		log.Warn("evaluation subset is empty, accuracy reported as 0")
	}
	r.metrics.EvalAccuracy(ev.Accuracy)

	summary = &TrainSummary{
		RunID:    r.id.String(),
		Location: location,
		Accuracy: ev.Accuracy,
		Correct:  ev.Correct,
		Total:    ev.Total,
		PerClass: make(map[string]trainer.ClassResult, model.Classes()),
		Digest:   hex.EncodeToString(ev.Digest[:]),
		Stats:    stats,
	}
	for c, res := range ev.PerClass {
		summary.PerClass[string(model.Alphabet[c])] = res
	}

	var buf bytes.Buffer
	if err := model.WriteCompressed(&buf); err != nil {
		return nil, newError(KindStorage, op, "encode model", err)
	}
	if err := deps.Store.Put(ctx, storage.Join(cfg.Model.Prefix, ModelName), buf.Bytes()); err != nil {
		return nil, newError(KindStorage, op, "write model to "+location, err)
	}
	report, err := newReport(summary, dataset, cfg, deps.now()).encode()
	if err != nil {
		return nil, newError(KindStorage, op, "encode report", err)
	}
	if err := deps.Store.Put(ctx, storage.Join(cfg.Model.Prefix, ReportName), report); err != nil {
		return nil, newError(KindStorage, op, "write report", err)
	}
	if cfg.Metrics.Enabled {
		if err := r.putMetrics(ctx, cfg.Model.Prefix); err != nil {
			return nil, err
		}
	}

	log.Info("model trained",
		zap.String("location", location),
		zap.Float64("accuracy", summary.Accuracy),
		zap.Int("correct", summary.Correct),
		zap.Int("samples", summary.Total),
		zap.Int("program_length", stats.ProgramLength),
		zap.Duration("fit", stats.Duration))
	return summary, nil
}

// loadDataset reads and verifies the dataset under prefix
func loadDataset(ctx context.Context, store storage.Store, prefix string) (*letters.Dataset, error) {
	const op = registry.KindTrainModel
	data, err := store.Get(ctx, storage.Join(prefix, letters.ManifestName))
	if errors.Is(err, storage.ErrNotExist) {
		return nil, newError(KindMissingDataset, op, "dataset manifest vanished", err)
	}
	if err != nil {
		return nil, newError(KindStorage, op, "read manifest", err)
	}
	manifest, err := letters.ParseManifest(data)
	if err != nil {
		return nil, newError(KindStorage, op, "corrupt manifest", err)
	}
	dataset, err := letters.Decode(manifest, func(name string) ([]byte, error) {
		return store.Get(ctx, storage.Join(prefix, name))
	})
	if err != nil {
		return nil, newError(KindStorage, op, "corrupt dataset", err)
	}
	return dataset, nil
}

func sortedNames(files map[string][]byte) []string {
	var names = make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

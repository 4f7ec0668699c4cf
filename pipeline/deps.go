package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neurlang/letters/metrics"
	"github.com/neurlang/letters/registry"
	"github.com/neurlang/letters/storage"
)

// Artifact names
const (
	ModelName   = "model.json.lzw"
	ReportName  = "report.toml"
	MetricsName = "metrics.prom"
)

// Deps are the collaborators of an operation
type Deps struct {
	Store  storage.Store
	Logger *zap.Logger

	// Registry records the run when not nil
	Registry *registry.Registry

	// Now is the clock, time.Now when nil
	Now func() time.Time
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// run tracks one invocation in the registry and metrics
type run struct {
	deps    Deps
	id      uuid.UUID
	op      string
	started time.Time
	entry   *registry.Run
	metrics *metrics.Metrics
}

func (d Deps) begin(ctx context.Context, op string) (*run, error) {
	r := &run{deps: d, id: uuid.New(), op: op, started: d.now(), metrics: metrics.New()}
	if d.Registry != nil {
		entry, err := d.Registry.Begin(ctx, r.id, op, r.started)
		if err != nil {
			return nil, newError(KindStorage, op, "record run", err)
		}
		r.entry = entry
	}
	return r, nil
}

// finish stores the outcome in the registry. A registry failure only turns
// into the result when the run itself succeeded.
func (r *run) finish(ctx context.Context, samples int, accuracy *float64, location string, err error) error {
	if r.entry == nil {
		return err
	}
	r.entry.Samples = samples
	r.entry.Accuracy = accuracy
	r.entry.Location = location
	if ferr := r.deps.Registry.Finish(ctx, r.entry, r.deps.now(), err); ferr != nil {
		if err != nil {
			r.deps.logger().Warn("failed to record run", zap.Error(ferr))
			return err
		}
		return newError(KindStorage, r.op, "record run", ferr)
	}
	return err
}

// putMetrics writes the metrics exposition next to the artifacts
func (r *run) putMetrics(ctx context.Context, prefix string) error {
	r.metrics.PhaseDuration(r.op, r.deps.now().Sub(r.started))
	text, err := r.metrics.Text()
	if err != nil {
		return newError(KindStorage, r.op, "render metrics", err)
	}
	if err := r.deps.Store.Put(ctx, storage.Join(prefix, MetricsName), text); err != nil {
		return newError(KindStorage, r.op, "write metrics", err)
	}
	return nil
}

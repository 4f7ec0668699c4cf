package trainer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/neurlang/quaternary"
	"go.uber.org/zap"

	"github.com/neurlang/letters/datasets"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/hashtron"
	"github.com/neurlang/letters/learning"
	"github.com/neurlang/letters/net/ensemble"
	"github.com/neurlang/letters/parallel"
)

// ErrTooFewClasses is returned when the training samples cover less than two classes
var ErrTooFewClasses = errors.New("trainer: training samples cover fewer than two classes")

// Observer is notified after every fitted hashtron. It is called concurrently.
type Observer interface {
	HashtronFitted(n int, programLen int, elapsed time.Duration)
}

// Options configure a fit
type Options struct {
	// Workers is the number of hashtrons fitted at once
	Workers int

	// Seed is mixed with the hashtron number into the rng of every hashtron
	Seed int64

	HyperParameters learning.HyperParameters

	Logger   *zap.Logger
	Observer Observer
}

// Stats summarize a fit
type Stats struct {
	Hashtrons     int
	ProgramLength int // hashing commands of all hashtrons
	FilterBytes   int // size the fitted sets would take as quaternary filters
	Duration      time.Duration
}

// Fit trains every hashtron of e on the samples. Hashtron n of class c at
// position p learns from the window p features: samples of class c vote for
// true with weight classes-1, the others vote for false with weight 1.
func Fit(ctx context.Context, e *ensemble.Ensemble, train []letters.Sample, o Options) (stats Stats, err error) {
	var log = o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var start = time.Now()

	var classes = make([]int, len(train))
	var features = make([][]uint32, len(train))
	var present = make(map[int]struct{})
	for i, s := range train {
		classes[i] = e.Alphabet.Index(s.Label)
		if classes[i] < 0 {
			return stats, fmt.Errorf("trainer: sample %d label %q not in alphabet", i, s.Label)
		}
		present[classes[i]] = struct{}{}
		features[i] = e.Geometry.Features(s.Pixels, nil)
	}
	if len(present) < 2 {
		return stats, ErrTooFewClasses
	}

	var weight = int64(e.Classes() - 1)
	var programLen, filterBytes, done atomic.Int64

	log.Info("fitting hashtrons",
		zap.Int("hashtrons", e.Len()),
		zap.Int("samples", len(train)),
		zap.Int("workers", o.Workers))

	err = parallel.ForEachErr(e.Len(), o.Workers, func(n int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		var began = time.Now()
		c, p := e.Locate(n)

		var tally datasets.Tally
		tally.Init()
		for i := range train {
			if classes[i] == c {
				tally.AddToCorrect(features[i][p], weight)
			} else {
				tally.AddToCorrect(features[i][p], -1)
			}
		}
		var tied = tally.Len()
		var dset = tally.Dataset()
		tally.Free()
		tied -= len(dset)
		filterBytes.Add(int64(len(quaternary.Make(dset))))
		var sets = dset.Split()

		var h = o.HyperParameters
		h.Logger = log.With(zap.Int("hashtron", n))
		program, err := h.Reduce(rand.New(rand.NewSource(hashtronSeed(o.Seed, n))), sets)
		if err != nil {
			return fmt.Errorf("hashtron %d (class %q, position %d): %w", n, e.Alphabet[c], p, err)
		}
		htron, err := hashtron.New(program, 1)
		if err != nil {
			return err
		}
		*e.GetHashtron(n) = *htron

		programLen.Add(int64(len(program)))
		elapsed := time.Since(began)
		if o.Observer != nil {
			o.Observer.HashtronFitted(n, len(program), elapsed)
		}
		log.Debug("hashtron fitted",
			zap.Int("hashtron", n),
			zap.Int("features", sets.Len()),
			zap.Int("tied", tied),
			zap.Int("program", len(program)),
			zap.Int64("done", done.Add(1)),
			zap.Duration("elapsed", elapsed))
		return nil
	})
	if err != nil {
		return stats, err
	}

	stats = Stats{
		Hashtrons:     e.Len(),
		ProgramLength: int(programLen.Load()),
		FilterBytes:   int(filterBytes.Load()),
		Duration:      time.Since(start),
	}
	log.Info("hashtrons fitted",
		zap.Int("program_length", stats.ProgramLength),
		zap.Int("filter_bytes", stats.FilterBytes),
		zap.Duration("duration", stats.Duration))
	return stats, nil
}

// hashtronSeed derives the seed of hashtron n so that no two hashtrons share
// an rng stream whatever order they are fitted in
func hashtronSeed(seed int64, n int) int64 {
	var z = uint64(seed) + uint64(n+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

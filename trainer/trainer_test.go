package trainer

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/letters/datasets"
	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/learning"
	"github.com/neurlang/letters/net/ensemble"
)

var geometry = letters.Geometry{Width: 8, Height: 8, Window: 3, Threshold: 128}

func samples(t *testing.T, alphabet string, perClass int) []letters.Sample {
	a, err := letters.ParseAlphabet(alphabet)
	require.NoError(t, err)
	s, err := letters.Generate(letters.Options{
		Alphabet:        a,
		Width:           geometry.Width,
		Height:          geometry.Height,
		SamplesPerClass: perClass,
		Noise:           0.02,
		Jitter:          1,
		Faces:           letters.DefaultFaces,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return s
}

type countingObserver struct {
	calls chan int
}

func (c countingObserver) HashtronFitted(n int, programLen int, elapsed time.Duration) {
	c.calls <- n
}

func fit(t *testing.T, alphabet string, train []letters.Sample, workers int, obs Observer) (*ensemble.Ensemble, Stats) {
	a, err := letters.ParseAlphabet(alphabet)
	require.NoError(t, err)
	e, err := ensemble.New(a, geometry, 3)
	require.NoError(t, err)
	h := learning.DefaultHyperParameters()
	stats, err := Fit(context.Background(), e, train, Options{
		Workers:         workers,
		Seed:            3,
		HyperParameters: h,
		Observer:        obs,
	})
	require.NoError(t, err)
	return e, stats
}

func TestFitAnswersEveryTally(t *testing.T) {
	train := samples(t, "IOX", 6)
	obs := countingObserver{calls: make(chan int, 1000)}
	e, stats := fit(t, "IOX", train, 4, obs)
	assert.Equal(t, e.Len(), stats.Hashtrons)
	assert.Len(t, obs.calls, e.Len())
	assert.Positive(t, stats.ProgramLength)
	assert.Positive(t, stats.FilterBytes)

	for n := 0; n < e.Len(); n++ {
		c, p := e.Locate(n)
		var tally datasets.Tally
		tally.Init()
		for _, s := range train {
			if e.Alphabet.Index(s.Label) == c {
				tally.AddToCorrect(geometry.Feature(s.Pixels, p), 2)
			} else {
				tally.AddToCorrect(geometry.Feature(s.Pixels, p), -1)
			}
		}
		for feature, want := range tally.Dataset() {
			require.Equal(t, want, e.GetHashtron(n).Bool(feature), "hashtron %d feature %d", n, feature)
		}
	}
}

func TestFitIndependentOfWorkers(t *testing.T) {
	train := samples(t, "AB", 5)
	e1, _ := fit(t, "AB", train, 1, nil)
	e8, _ := fit(t, "AB", train, 8, nil)
	for n := 0; n < e1.Len(); n++ {
		assert.Equal(t, e1.GetHashtron(n).Program(), e8.GetHashtron(n).Program())
	}
	assert.Equal(t, Evaluate(e1, train, 1).Digest, Evaluate(e8, train, 5).Digest)
}

func TestFitRejects(t *testing.T) {
	e, err := ensemble.New(letters.Alphabet("AB"), geometry, 1)
	require.NoError(t, err)

	_, err = Fit(context.Background(), e, samples(t, "A", 3), Options{Workers: 2})
	assert.ErrorIs(t, err, ErrTooFewClasses)

	_, err = Fit(context.Background(), e, samples(t, "AC", 3), Options{Workers: 2})
	assert.ErrorContains(t, err, "not in alphabet")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fit(ctx, e, samples(t, "AB", 3), Options{Workers: 2, HyperParameters: learning.DefaultHyperParameters()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate(t *testing.T) {
	all := samples(t, "IO", 10)
	train, eval := letters.Split(all, 0.3, rand.New(rand.NewSource(2)))
	e, _ := fit(t, "IO", train, 2, nil)

	ev := Evaluate(e, eval, 3)
	assert.Equal(t, len(eval), ev.Total)
	assert.GreaterOrEqual(t, ev.Accuracy, 0.0)
	assert.LessOrEqual(t, ev.Accuracy, 1.0)
	require.Len(t, ev.PerClass, 2)
	assert.Equal(t, 3, ev.PerClass[0].Total)
	assert.Equal(t, ev.Correct, ev.PerClass[0].Correct+ev.PerClass[1].Correct)

	assert.Equal(t, ev.Digest, Evaluate(e, eval, 1).Digest)

	empty := Evaluate(e, nil, 2)
	assert.Zero(t, empty.Accuracy)
	assert.Zero(t, empty.Total)
}

package trainer

import (
	"sync/atomic"

	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/net/ensemble"
	"github.com/neurlang/letters/parallel"
)

// ClassResult counts the evaluation samples of one class
type ClassResult struct {
	Correct int     `toml:"correct"`
	Total   int     `toml:"total"`
	Recall  float64 `toml:"recall"`
}

// Evaluation is the outcome of predicting every evaluation sample
type Evaluation struct {
	Correct  int
	Total    int
	Accuracy float64

	// PerClass is indexed like the alphabet
	PerClass []ClassResult

	// Digest is the sha256 of the predicted class indices in sample order
	Digest [32]byte
}

// Evaluate predicts the samples on workers goroutines. Samples labeled
// outside the alphabet count as wrong. No samples give accuracy 0.
func Evaluate(e *ensemble.Ensemble, samples []letters.Sample, workers int) (ev Evaluation) {
	var correct = make([]atomic.Int64, e.Classes())
	var total = make([]atomic.Int64, e.Classes())
	var hsh = parallel.NewUint16Hasher(len(samples))
	var right atomic.Int64

	parallel.ForEach(len(samples), workers, func(i int) {
		predicted, _ := e.Predict(samples[i].Pixels)
		hsh.MustPutUint16(i, uint16(predicted))
		c := e.Alphabet.Index(samples[i].Label)
		if c < 0 {
			return
		}
		total[c].Add(1)
		if predicted == c {
			correct[c].Add(1)
			right.Add(1)
		}
	})

	ev.Total = len(samples)
	ev.Correct = int(right.Load())
	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	ev.PerClass = make([]ClassResult, e.Classes())
	for c := range ev.PerClass {
		r := &ev.PerClass[c]
		r.Correct, r.Total = int(correct[c].Load()), int(total[c].Load())
		if r.Total > 0 {
			r.Recall = float64(r.Correct) / float64(r.Total)
		}
	}
	ev.Digest = hsh.Sum()
	return
}

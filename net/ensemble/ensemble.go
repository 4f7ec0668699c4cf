// Package ensemble implements the one-vs-rest letter classifier: for every
// class and every window position a hashtron tells whether the window looks
// like that class, and the class with the most yes votes wins.
package ensemble

import (
	"errors"

	"github.com/neurlang/letters/datasets/letters"
	"github.com/neurlang/letters/hashtron"
	"github.com/neurlang/letters/layer"
	"github.com/neurlang/letters/layer/vote"
)

var ErrNoPositions = errors.New("ensemble: window does not fit into the image")

// Ensemble is the trained model
type Ensemble struct {
	Alphabet letters.Alphabet
	Geometry letters.Geometry

	// Seed the hashtrons were trained from
	Seed int64

	hashtrons []hashtron.Hashtron
	vote      *vote.VoteLayer
}

// New creates an untrained ensemble for the alphabet and geometry
func New(alphabet letters.Alphabet, geometry letters.Geometry, seed int64) (*Ensemble, error) {
	if alphabet.Len() == 0 {
		return nil, letters.ErrEmptyAlphabet
	}
	var positions = geometry.Positions()
	if positions == 0 {
		return nil, ErrNoPositions
	}
	l, err := vote.New(alphabet.Len(), positions)
	if err != nil {
		return nil, err
	}
	e := &Ensemble{
		Alphabet:  append(letters.Alphabet(nil), alphabet...),
		Geometry:  geometry,
		Seed:      seed,
		hashtrons: make([]hashtron.Hashtron, l.Hashtrons()),
		vote:      l,
	}
	for i := range e.hashtrons {
		h, _ := hashtron.New(nil, 1)
		e.hashtrons[i] = *h
	}
	return e, nil
}

// Len returns the number of hashtrons, classes × positions
func (e *Ensemble) Len() int {
	return len(e.hashtrons)
}

// Classes returns the number of classes
func (e *Ensemble) Classes() int {
	return e.Alphabet.Len()
}

// Positions returns the number of window positions
func (e *Ensemble) Positions() int {
	return e.Geometry.Positions()
}

// Index returns the hashtron number of class c at position p
func (e *Ensemble) Index(c, p int) int {
	return c*e.Positions() + p
}

// Locate is the inverse of Index
func (e *Ensemble) Locate(n int) (c, p int) {
	return n / e.Positions(), n % e.Positions()
}

// GetHashtron gets the n-th hashtron pointer
func (e *Ensemble) GetHashtron(n int) *hashtron.Hashtron {
	return &e.hashtrons[n]
}

// Infer runs every hashtron on the image and returns the filled vote
func (e *Ensemble) Infer(pixels []byte) layer.Combiner {
	var combiner = e.vote.Lay()
	var features = e.Geometry.Features(pixels, nil)
	for n := range e.hashtrons {
		_, p := e.Locate(n)
		combiner.Put(n, e.hashtrons[n].Bool(features[p]))
	}
	return combiner
}

// Predict returns the class index with most votes (the lowest on ties) and
// the fraction of positions that voted for it
func (e *Ensemble) Predict(pixels []byte) (class int, confidence float64) {
	best, votes := vote.Argmax(e.Infer(pixels))
	return best, float64(votes) / float64(e.Positions())
}

// Classify is Predict returning the letter
func (e *Ensemble) Classify(pixels []byte) (letter byte, confidence float64) {
	class, confidence := e.Predict(pixels)
	return e.Alphabet[class], confidence
}

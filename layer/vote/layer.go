// Package vote implements a one-vs-rest vote layer: hashtron c*positions+p
// answers whether window p shows class c and feature c counts the yes votes.
package vote

import (
	"fmt"
	"sync/atomic"

	"github.com/neurlang/letters/layer"
)

// VoteLayer is the shape of the vote
type VoteLayer struct {
	classes   int
	positions int
}

// Vote is the combiner of one input
type Vote struct {
	vec       []atomic.Bool
	classes   int
	positions int
}

// New creates a new vote layer of classes × positions answers
func New(classes, positions int) (*VoteLayer, error) {
	if classes < 1 || positions < 1 {
		return nil, fmt.Errorf("vote: invalid dimensions %d×%d", classes, positions)
	}
	return &VoteLayer{classes: classes, positions: positions}, nil
}

// Lay turns the vote layer into a combiner
func (l *VoteLayer) Lay() layer.Combiner {
	return &Vote{
		vec:       make([]atomic.Bool, l.classes*l.positions),
		classes:   l.classes,
		positions: l.positions,
	}
}

// Hashtrons reports how many answers the layer collects
func (l *VoteLayer) Hashtrons() int {
	return l.classes * l.positions
}

// Put stores the answer of hashtron n.
func (v *Vote) Put(n int, b bool) {
	v.vec[n].Store(b)
}

// Feature returns the number of positions voting for class n.
func (v *Vote) Feature(n int) (o uint32) {
	for i := n * v.positions; i < (n+1)*v.positions; i++ {
		if v.vec[i].Load() {
			o++
		}
	}
	return
}

// Len reports the number of classes.
func (v *Vote) Len() int {
	return v.classes
}

// Argmax returns the class with the most votes, the lowest one on ties, and
// its vote count
func Argmax(c layer.Combiner) (best int, votes uint32) {
	for n := 0; n < c.Len(); n++ {
		if f := c.Feature(n); n == 0 || f > votes {
			best, votes = n, f
		}
	}
	return
}

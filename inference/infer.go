// Package inference implements the dependency-free inference stage of the letter
// classifier. Generated programs (see hashtron.WriteGo) can be evaluated with it
// without linking the training code.
package inference

import (
	"github.com/neurlang/letters/hash"
)

// Model is any hashtron-like program of (salt, modulo) hashing commands
type Model interface {
	Get(n int) (s uint32, max uint32)
	Len() int
}

// Program adapts a literal [][2]uint32 program to Model
type Program [][2]uint32

func (p Program) Len() int {
	return len(p)
}
func (p Program) Get(n int) (uint32, uint32) {
	return p[n][0], p[n][1]
}

// BoolInfer runs input through the program and reports the lowest bit. An
// empty program answers false.
func BoolInfer(input uint32, m Model) bool {
	if m.Len() == 0 {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		var s, max = m.Get(i)
		input = hash.Hash(input, s, max)
	}
	return input&1 != 0
}

// Package hashtron implements a hashtron (boolean classifier)
package hashtron

// Hashtron represents an individual hashtron (classifier) in memory. Its program
// is a chain of hashing commands; feeding a feature through the chain and taking
// the lowest bit yields the answer.
type Hashtron struct {
	program [][2]uint32
	bits    byte
}

// Get gets the hashing command at position n
func (h Hashtron) Get(n int) (s uint32, max uint32) {
	return h.program[n][0], h.program[n][1]
}

// Len gets the number of hashing commands (size of hashtron program)
func (h Hashtron) Len() int {
	return len(h.program)
}

// Bits is the number of output bits the hashtron was trained for
func (h Hashtron) Bits() byte {
	return h.bits
}

// Program returns a copy of the hashing commands.
func (h Hashtron) Program() [][2]uint32 {
	return append([][2]uint32(nil), h.program...)
}

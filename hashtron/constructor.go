package hashtron

import (
	"errors"
)

// ErrZeroModulo is returned when a hashing command would reduce into an empty range.
var ErrZeroModulo = errors.New("hashtron: hashing command with zero modulo")

// New creates a hashtron from a program of (salt, modulo) commands. Bits below 1
// are raised to 1. A nil program yields an untrained hashtron answering 0.
func New(program [][2]uint32, bits byte) (h *Hashtron, err error) {
	for _, cmd := range program {
		if cmd[1] == 0 {
			return nil, ErrZeroModulo
		}
	}
	h = new(Hashtron)
	if bits == 0 {
		bits = 1
	}
	h.program = append([][2]uint32(nil), program...)
	h.bits = bits
	return
}

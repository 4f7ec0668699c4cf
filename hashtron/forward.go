package hashtron

import (
	"github.com/neurlang/letters/inference"
)

// Bool reports the lowest output bit for command.
func (h Hashtron) Bool(command uint32) bool {
	return inference.BoolInfer(command, h)
}

package learning

import (
	"go.uber.org/zap"
)

// HyperParameters tune the search that fits one hashtron
type HyperParameters struct {
	Threads int // number of goroutines searching salts

	Deadline int // salts tried at one modulo before the attempt counts as failed
	Retries  int // failed attempts tolerated before giving up

	// The modulo of a step is the product of the set sizes divided by a factor
	// between Factor and MaxFactor. Salts found early double the factor for the
	// next step, salts found late or not at all halve it.
	Factor     uint32
	MaxFactor  uint32
	Subtractor uint32 // subtracted from each set size before multiplying

	Logger *zap.Logger
}

// DefaultHyperParameters are the tunables used when nothing else is configured
func DefaultHyperParameters() HyperParameters {
	return HyperParameters{
		Threads:    1,
		Deadline:   1 << 14,
		Retries:    6,
		Factor:     1,
		MaxFactor:  4,
		Subtractor: 1,
	}
}

func (h *HyperParameters) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// Package learning implements the learning stage of the classifier: it finds
// the program of a hashtron that answers a two-set dataset correctly.
package learning

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/jbarham/primegen"
	"go.uber.org/zap"

	"github.com/neurlang/letters/datasets"
	"github.com/neurlang/letters/hash"
	"github.com/neurlang/letters/parallel"
)

// ErrNoSolution is returned when no program was found within the retries
var ErrNoSolution = errors.New("learning: no separating program found")

// Reduce fits a program mapping every feature of sets[0] to false and every
// feature of sets[1] to true. Each step picks a salt that hashes both sets
// modulo a prime without mixing them and merges at least two features; the
// images replace the sets. Once both sets are single
// values a modulo 2 step sends the false one to 0 and the true one to 1.
//
// Salts are tried in a fixed order starting from a value drawn from rng, the
// smallest winner is taken, so the program depends only on rng and the sets.
func (h *HyperParameters) Reduce(rng *rand.Rand, sets datasets.SplittedDataset) ([][2]uint32, error) {
	var log = h.logger()
	var retries = h.Retries
	if retries < 1 {
		retries = 1
	}
	var center = rng.Uint32()

	if len(sets[0]) == 0 || len(sets[1]) == 0 {
		// one sided: collapse everything to 0, then flip it to the answer
		var want uint32
		if len(sets[1]) > 0 {
			want = 1
		}
		s, ok := h.search(center, func(s uint32, _ parallel.LoopStopper) bool {
			return hash.Hash(0, s, 2) == want
		})
		if !ok {
			return nil, ErrNoSolution
		}
		return [][2]uint32{{0, 1}, {s, 2}}, nil
	}

	var cur = [2][]uint32{
		append([]uint32(nil), sets[0]...),
		append([]uint32(nil), sets[1]...),
	}
	var program [][2]uint32
	var failures int

	// the divisor of the modulo adapts to how hard the last salt was to find
	var minFactor = max(h.Factor, 1)
	var maxFactor = max(h.MaxFactor, minFactor)
	var factor = minFactor
	var quick, slow = h.deadline() / 64, h.deadline() / 4

	for {
		if len(cur[0]) == 1 && len(cur[1]) == 1 {
			f, t := cur[0][0], cur[1][0]
			s, ok := h.search(center, func(s uint32, _ parallel.LoopStopper) bool {
				return hash.Hash(f, s, 2) == 0 && hash.Hash(t, s, 2) == 1
			})
			if ok {
				return append(program, [2]uint32{s, 2}), nil
			}
			failures++
			if failures >= retries {
				return nil, ErrNoSolution
			}
			center = rng.Uint32()
			continue
		}

		var modulo = h.modulo(cur, factor, failures)
		s, ok := h.search(center, func(s uint32, ender parallel.LoopStopper) bool {
			return separates(&cur, s, modulo, ender)
		})
		if !ok && factor > minFactor {
			factor = max(factor/2, minFactor)
			continue
		}
		if !ok {
			failures++
			log.Debug("salt search failed",
				zap.Uint32("modulo", modulo),
				zap.Int("false", len(cur[0])),
				zap.Int("true", len(cur[1])),
				zap.Int("failures", failures))
			if failures >= retries {
				return nil, ErrNoSolution
			}
			center = rng.Uint32()
			continue
		}

		switch nonce := s ^ center; {
		case nonce < quick:
			factor = min(factor*2, maxFactor)
		case nonce > slow:
			factor = max(factor/2, minFactor)
		}
		program = append(program, [2]uint32{s, modulo})
		center = s
		for j := range cur {
			cur[j] = images(cur[j], s, modulo)
		}
	}
}

// modulo picks the prime for the next step: the product of the set sizes, each
// less Subtractor, divided by factor, never below the bigger set. Every failed
// search so far adds a quarter.
func (h *HyperParameters) modulo(sets [2][]uint32, factor uint32, failures int) uint32 {
	var n = [2]uint64{uint64(len(sets[0])), uint64(len(sets[1]))}
	for j := range n {
		if n[j] > uint64(h.Subtractor) {
			n[j] -= uint64(h.Subtractor)
		} else {
			n[j] = 1
		}
	}
	var m = n[0] * n[1] / uint64(max(factor, 1))
	if l := uint64(maxLen(sets)); m < l {
		m = l
	}
	m += m * uint64(failures) / 4
	return nextPrime(m)
}

// search tries salts center^0, center^1, ... and returns the first one
// accepted by try
func (h *HyperParameters) search(center uint32, try func(s uint32, ender parallel.LoopStopper) bool) (uint32, bool) {
	nonce, ok := parallel.Loop(h.Threads).LoopUntil(h.deadline(), func(nonce uint32, ender parallel.LoopStopper) bool {
		return try(center^nonce, ender)
	})
	return center ^ nonce, ok
}

// deadline is the number of salts one search may try
func (h *HyperParameters) deadline() uint32 {
	switch {
	case h.Deadline < 1:
		return 1
	case uint64(h.Deadline) > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(h.Deadline)
}

type scratch struct {
	slots []uint8
	outs  []uint32
	buf   []uint32
}

var scratchPool = sync.Pool{New: func() any { return new(scratch) }}

// separates reports whether salt s modulo m keeps the two sets apart while
// merging at least two features of the same set
func separates(sets *[2][]uint32, s, m uint32, ender parallel.LoopStopper) bool {
	sc := scratchPool.Get().(*scratch)
	defer scratchPool.Put(sc)
	if uint32(len(sc.slots)) < m {
		sc.slots = make([]uint8, m)
	}
	var touched = sc.outs[:0]
	defer func() {
		for _, o := range touched {
			sc.slots[o] = 0
		}
		sc.outs = touched[:0]
	}()

	var size int
	var chunk = 64 * hash.HashVectorizedParallelism()
	if len(sc.buf) < chunk {
		sc.buf = make([]uint32, chunk)
	}
	var buf = sc.buf
	for j := range sets {
		var mark = uint8(1) << j
		var set = sets[j]
		for i := 0; i < len(set); i += chunk {
			if ender.Load() {
				return false
			}
			var end = i + chunk
			if end > len(set) {
				end = len(set)
			}
			var outs = buf[:end-i]
			hash.HashSalted(outs, set[i:end], s, m)
			for _, o := range outs {
				v := sc.slots[o]
				if v&^mark != 0 {
					touched = append(touched, o)
					return false
				}
				if v == 0 {
					size++
					sc.slots[o] = mark
					touched = append(touched, o)
				}
			}
		}
	}
	return size < len(sets[0])+len(sets[1])
}

// images hashes the set and returns its distinct values, sorted
func images(set []uint32, s, m uint32) []uint32 {
	var out = make([]uint32, len(set))
	hash.HashSalted(out, set, s, m)
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	var n int
	for i, v := range out {
		if i == 0 || v != out[n-1] {
			out[n] = v
			n++
		}
	}
	return out[:n]
}

func maxLen(sets [2][]uint32) uint32 {
	if len(sets[0]) > len(sets[1]) {
		return uint32(len(sets[0]))
	}
	return uint32(len(sets[1]))
}

// nextPrime returns the smallest prime not below n, at least 2
func nextPrime(n uint64) uint32 {
	if n < 2 {
		n = 2
	}
	if n > math.MaxUint32-1000 {
		n = math.MaxUint32 - 1000
	}
	p := primegen.New()
	p.SkipTo(n)
	return uint32(p.Next())
}

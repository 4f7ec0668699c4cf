// Package parallel contains the concurrency primitives of the classifier: a
// bounded ForEach, a parallel search LoopUntil and an order independent Hasher.
package parallel

import (
	"math"
	"sync"
	"sync/atomic"
)

// LoopStopper is an interface to check if the loop should stop.
type LoopStopper interface {

	// Load reports true if the loop should stop.
	Load() bool
}

// Loop represents the number of goroutines to run.
type Loop int

// LoopUntil hands out indices 0, 1, 2, ... to l goroutines until yield accepts
// one, or limit indices were tried. It returns the smallest accepted index, so
// the result does not depend on goroutine scheduling: once an index is
// accepted, bigger indices are abandoned (their ender reports true) while
// smaller ones still run to completion.
func (l Loop) LoopUntil(limit uint32, yield func(i uint32, ender LoopStopper) bool) (found uint32, ok bool) {
	if l < 1 {
		l = 1
	}
	var (
		next uint32
		best atomic.Uint32
		wg   sync.WaitGroup
	)
	best.Store(math.MaxUint32)

	for n := 0; n < int(l); n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := atomic.AddUint32(&next, 1) - 1
				if i >= limit || i >= best.Load() {
					return
				}
				if yield(i, stopper{i: i, best: &best}) {
					for {
						b := best.Load()
						if i >= b || best.CompareAndSwap(b, i) {
							break
						}
					}
					return
				}
			}
		}()
	}
	wg.Wait()

	found = best.Load()
	return found, found != math.MaxUint32
}

// stopper tells an attempt at index i to give up once a smaller index won
type stopper struct {
	i    uint32
	best *atomic.Uint32
}

func (s stopper) Load() bool {
	return s.best.Load() < s.i
}

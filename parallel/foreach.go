package parallel

import (
	"sync"
	"sync/atomic"
)

// ForEach runs body for every integer from 0 to length-1 on at most limit
// goroutines. It returns after all bodies returned.
func ForEach(length, limit int, body func(i int)) {
	if length <= 0 {
		return
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}
	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1) - 1)
				if i >= length {
					return
				}
				body(i)
			}
		}()
	}
	wg.Wait()
}

// ForEachErr is ForEach for bodies that can fail. Once a body fails no new
// bodies start; the error of the lowest failing index is returned.
func ForEachErr(length, limit int, body func(i int) error) error {
	var mut sync.Mutex
	var failed atomic.Bool
	var first = -1
	var firstErr error
	ForEach(length, limit, func(i int) {
		if failed.Load() {
			return
		}
		if err := body(i); err != nil {
			failed.Store(true)
			mut.Lock()
			if first < 0 || i < first {
				first, firstErr = i, err
			}
			mut.Unlock()
		}
	})
	return firstErr
}

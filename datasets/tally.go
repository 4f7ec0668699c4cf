package datasets

import (
	"sync"
)

// Tally is used to count weighted votes on dataset features and return the
// majority votes as a Dataset
type Tally struct {
	// votes for a feature: positive weight votes true, negative votes false
	votes map[uint32]int64

	mut sync.Mutex
}

// Init initializes the tally dataset structure
func (t *Tally) Init() {
	t.votes = make(map[uint32]int64)
}

// Free frees the memory occupied by tally dataset structure
func (t *Tally) Free() {
	t.votes = nil
}

// Len reports the number of features voted on so far, including tied ones
func (t *Tally) Len() (o int) {
	t.mut.Lock()
	o = len(t.votes)
	t.mut.Unlock()
	return
}

// AddToCorrect adds the weighted vote for the feature
func (t *Tally) AddToCorrect(feature uint32, vote int64) {
	t.mut.Lock()
	t.votes[feature] += vote
	t.mut.Unlock()
}

// Dataset resolves the votes: features with a positive sum map to true,
// negative to false, ties are left out.
func (t *Tally) Dataset() (set Dataset) {
	set.Init()
	t.mut.Lock()
	defer t.mut.Unlock()
	for feature, rating := range t.votes {
		if rating != 0 {
			set[feature] = rating > 0
		}
	}
	return
}

// Package datasets implements the dataset types consumed by the learning stage
package datasets

import (
	"sort"
)

// Dataset maps a feature to the boolean a hashtron should answer for it
type Dataset map[uint32]bool

func (d *Dataset) Init() {
	*d = make(map[uint32]bool)
}

// SplittedDataset holds the false features at 0 and the true features at 1,
// each sorted ascending.
type SplittedDataset [2][]uint32

// Split splits dataset into a false set and a true set
func (d Dataset) Split() (o SplittedDataset) {
	for k, v := range d {
		if v {
			o[1] = append(o[1], k)
		} else {
			o[0] = append(o[0], k)
		}
	}
	for i := range o {
		sort.Slice(o[i], func(a, b int) bool { return o[i][a] < o[i][b] })
	}
	return
}

// Len reports the number of features in both sets
func (s SplittedDataset) Len() int {
	return len(s[0]) + len(s[1])
}

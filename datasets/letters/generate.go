package letters

import (
	"errors"
	"math/rand"
)

// Options configure dataset generation
type Options struct {
	Alphabet        Alphabet
	Width, Height   int
	SamplesPerClass int
	Noise           float64
	Jitter          int
	Faces           []string
}

// Dataset is the full collection of samples partitioned into train and eval
type Dataset struct {
	Alphabet      Alphabet
	Width, Height int
	Train, Eval   []Sample
}

// Len reports the total number of samples
func (d *Dataset) Len() int {
	return len(d.Train) + len(d.Eval)
}

// Classes reports the number of distinct labels present in the samples
func Classes(samples []Sample) int {
	var seen [256]bool
	var n int
	for _, s := range samples {
		if !seen[s.Label] {
			seen[s.Label] = true
			n++
		}
	}
	return n
}

// Generate renders SamplesPerClass samples for every letter, in alphabet order,
// cycling through the faces.
func Generate(o Options, rng *rand.Rand) ([]Sample, error) {
	if len(o.Alphabet) == 0 {
		return nil, ErrEmptyAlphabet
	}
	if o.SamplesPerClass < 1 {
		return nil, errors.New("samples per class must be positive")
	}
	r, err := NewRenderer(o.Width, o.Height, o.Faces)
	if err != nil {
		return nil, err
	}
	r.Noise = o.Noise
	r.Jitter = o.Jitter

	var samples = make([]Sample, 0, len(o.Alphabet)*o.SamplesPerClass)
	for _, letter := range o.Alphabet {
		for i := 0; i < o.SamplesPerClass; i++ {
			samples = append(samples, Sample{
				Label:  letter,
				Pixels: r.Render(letter, i%r.Faces(), rng),
			})
		}
	}
	return samples, nil
}

// Split partitions the samples into train and eval, stratified per label: of n
// samples of a label, floor(n*evalFraction) go to eval, but at least one stays
// in train. Every sample ends up in exactly one subset.
func Split(samples []Sample, evalFraction float64, rng *rand.Rand) (train, eval []Sample) {
	var order []byte
	var byLabel = make(map[byte][]Sample)
	for _, s := range samples {
		if _, ok := byLabel[s.Label]; !ok {
			order = append(order, s.Label)
		}
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}
	for _, label := range order {
		class := byLabel[label]
		n := len(class)
		nEval := int(float64(n) * evalFraction)
		if nEval >= n {
			nEval = n - 1
		}
		if nEval < 0 {
			nEval = 0
		}
		for i, j := range rng.Perm(n) {
			if i < nEval {
				eval = append(eval, class[j])
			} else {
				train = append(train, class[j])
			}
		}
	}
	return
}

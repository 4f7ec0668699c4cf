package layer

// Layer is a shape from which fresh combiners are made, one per input
type Layer interface {

	// Lay creates a combiner
	Lay() Combiner
}

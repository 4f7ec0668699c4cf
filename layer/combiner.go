// Package layer defines the combiner and layer interfaces that turn the
// boolean answers of many hashtrons into features
package layer

// Combiner collects boolean answers and combines them into output features.
// Put may be called concurrently for distinct positions.
type Combiner interface {

	// Put stores the answer of hashtron n.
	Put(n int, v bool)

	// Feature returns the n-th combined feature.
	Feature(n int) (o uint32)

	// Len reports the number of features.
	Len() int
}

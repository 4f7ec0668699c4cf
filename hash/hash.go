// Package hash implements the fast modular hash every hashtron is built from
package hash

// Hash mixes the input n with the salt s and reduces the result into 0..max-1.
// A max of 0 always yields 0.
func Hash(n uint32, s uint32, max uint32) uint32 {
	// salt in by subtraction
	var m = n - s

	// xorshift cascade
	m ^= m << 2
	m ^= m << 3
	m ^= m >> 5
	m ^= m >> 7
	m ^= m << 11
	m ^= m << 13
	m ^= m >> 17
	m ^= m << 19

	// salt in again by addition
	m += s

	// multiply-shift range reduction instead of modulo
	// https://lemire.me/blog/2016/06/27/a-fast-alternative-to-the-modulo-reduction/
	return uint32((uint64(m) * uint64(max)) >> 32)
}

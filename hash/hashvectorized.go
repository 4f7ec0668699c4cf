package hash

import (
	"github.com/klauspost/cpuid/v2"
)

var hashVectorizedParallelism = 1

// saltedLanes hashes exactly hashVectorizedParallelism inputs
var saltedLanes func(out, n []uint32, s, max uint32)

func init() {
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		setLanes(16)
	case cpuid.CPU.Supports(cpuid.AVX2):
		setLanes(8)
	default:
		setLanes(1)
	}
}

func setLanes(lanes int) {
	hashVectorizedParallelism = lanes
	switch lanes {
	case 16:
		saltedLanes = salted16
	case 8:
		saltedLanes = salted8
	default:
		hashVectorizedParallelism = 1
		saltedLanes = nil
	}
}

// HashVectorizedParallelism reports how many hashes HashSalted computes per
// block on this CPU. Can't return 0.
func HashVectorizedParallelism() int {
	return hashVectorizedParallelism
}

// HashSalted hashes every n[i] with the one salt s into out[i], modulo max.
// Whole blocks of HashVectorizedParallelism inputs go through the lane kernel,
// the tail through Hash.
func HashSalted(out []uint32, n []uint32, s uint32, max uint32) {
	var i int
	if lanes := hashVectorizedParallelism; saltedLanes != nil {
		for ; i+lanes <= len(out); i += lanes {
			saltedLanes(out[i:i+lanes], n[i:i+lanes], s, max)
		}
	}
	for ; i < len(out); i++ {
		out[i] = Hash(n[i], s, max)
	}
}

// salted16 runs every step of Hash across 16 lanes before the next step
func salted16(out, n []uint32, s, max uint32) {
	var m [16]uint32
	var v = (*[16]uint32)(n)
	for j := range m {
		m[j] = v[j] - s
	}
	for j := range m {
		m[j] ^= m[j] << 2
		m[j] ^= m[j] << 3
		m[j] ^= m[j] >> 5
		m[j] ^= m[j] >> 7
	}
	for j := range m {
		m[j] ^= m[j] << 11
		m[j] ^= m[j] << 13
		m[j] ^= m[j] >> 17
		m[j] ^= m[j] << 19
	}
	var o = (*[16]uint32)(out)
	for j := range m {
		o[j] = uint32((uint64(m[j]+s) * uint64(max)) >> 32)
	}
}

// salted8 is salted16 for 8 lanes
func salted8(out, n []uint32, s, max uint32) {
	var m [8]uint32
	var v = (*[8]uint32)(n)
	for j := range m {
		m[j] = v[j] - s
	}
	for j := range m {
		m[j] ^= m[j] << 2
		m[j] ^= m[j] << 3
		m[j] ^= m[j] >> 5
		m[j] ^= m[j] >> 7
	}
	for j := range m {
		m[j] ^= m[j] << 11
		m[j] ^= m[j] << 13
		m[j] ^= m[j] >> 17
		m[j] ^= m[j] << 19
	}
	var o = (*[8]uint32)(out)
	for j := range m {
		o[j] = uint32((uint64(m[j]+s) * uint64(max)) >> 32)
	}
}

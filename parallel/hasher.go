package parallel

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"sync"
)

const hasherBlock = 32

// Hasher digests n uint16 values which arrive concurrently and in any order.
// The digest equals sha256 of the values in index order, little endian; full
// blocks are hashed as soon as every earlier block was.
type Hasher struct {
	mut    sync.Mutex
	sha    hash.Hash
	ate    int
	filled []uint8
	data   []byte
}

// NewUint16Hasher creates a hasher for n values
func NewUint16Hasher(n int) *Hasher {
	blocks := (n + hasherBlock - 1) / hasherBlock
	return &Hasher{
		sha:    sha256.New(),
		filled: make([]uint8, blocks),
		data:   make([]byte, 2*n),
	}
}

// MustPutUint16 stores the n-th value. Storing a value twice panics.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	h.mut.Lock()
	defer h.mut.Unlock()
	block := n / hasherBlock
	if block < h.ate {
		panic("parallel: value put into an already digested block")
	}
	binary.LittleEndian.PutUint16(h.data[2*n:], value)
	h.filled[block]++
	for h.ate < len(h.filled) && int(h.filled[h.ate]) == h.blockLen(h.ate) {
		h.eat()
	}
}

func (h *Hasher) blockLen(block int) int {
	if rest := len(h.data)/2 - block*hasherBlock; rest < hasherBlock {
		return rest
	}
	return hasherBlock
}

func (h *Hasher) eat() {
	start := 2 * h.ate * hasherBlock
	h.sha.Write(h.data[start : start+2*h.blockLen(h.ate)])
	h.ate++
}

// Sum digests the remaining blocks, missing values counting as zero, and
// returns the digest
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()
	for h.ate < len(h.filled) {
		h.eat()
	}
	copy(ret[:], h.sha.Sum(nil))
	return
}

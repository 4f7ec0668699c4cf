// Package letters implements the ASCII letter image dataset: rendering labeled
// letter images, extracting window features from them, and the on-disk format
// the dataset is exchanged in.
package letters

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAlphabet = errors.New("alphabet is empty")
	ErrNotGraphic    = errors.New("alphabet letter is not a printable ASCII character")
	ErrDuplicate     = errors.New("alphabet letter is repeated")
)

// Alphabet is the ordered set of letter classes. The position of a letter is its class index.
type Alphabet []byte

// ParseAlphabet parses a string of distinct printable ASCII characters
func ParseAlphabet(s string) (Alphabet, error) {
	if len(s) == 0 {
		return nil, ErrEmptyAlphabet
	}
	var seen [256]bool
	var a = make(Alphabet, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x21 || c > 0x7e {
			return nil, fmt.Errorf("%w: %q", ErrNotGraphic, c)
		}
		if seen[c] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicate, c)
		}
		seen[c] = true
		a = append(a, c)
	}
	return a, nil
}

// Index returns the class index of the letter, or -1 if it is not in the alphabet
func (a Alphabet) Index(letter byte) int {
	for i, c := range a {
		if c == letter {
			return i
		}
	}
	return -1
}

// Contains reports whether the letter is in the alphabet
func (a Alphabet) Contains(letter byte) bool {
	return a.Index(letter) >= 0
}

func (a Alphabet) Len() int {
	return len(a)
}

func (a Alphabet) String() string {
	return string(a)
}

package hashtron

import (
	"errors"
	"io"
	"strconv"
)

// isNameChar reports whether c may appear in a generated program name
func isNameChar(c rune) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') || (c == '_')
}

// WriteGo serializes the hashtron into golang source declaring
// programNameBits and programName, suitable for embedding into a binary.
func (h Hashtron) WriteGo(w io.Writer, name string) error {
	for _, v := range name {
		if !isNameChar(v) {
			return errors.New("hashtron: program name is invalid")
		}
	}
	var b []byte
	b = append(b, "var program"...)
	b = append(b, name...)
	b = append(b, "Bits byte = "...)
	b = strconv.AppendUint(b, uint64(h.Bits()), 10)
	b = append(b, '\n')
	b = append(b, "var program"...)
	b = append(b, name...)
	b = append(b, " = [][2]uint32{\n"...)
	for _, v := range h.program {
		b = append(b, "\t{"...)
		b = strconv.AppendUint(b, uint64(v[0]), 10)
		b = append(b, ", "...)
		b = strconv.AppendUint(b, uint64(v[1]), 10)
		b = append(b, "},\n"...)
	}
	b = append(b, "}\n"...)
	_, err := w.Write(b)
	return err
}

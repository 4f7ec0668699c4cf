package hashtron

import (
	"encoding/json"
	"io"
)

type jsonHashtron struct {
	Program [][2]uint32 `json:"program"`
	Bits    byte        `json:"bits,omitempty"`
}

// MarshalJSON encodes the hashtron as {"program":[[salt,modulo],...],"bits":n}
func (h Hashtron) MarshalJSON() ([]byte, error) {
	var program = h.program
	if program == nil {
		program = [][2]uint32{}
	}
	return json.Marshal(jsonHashtron{Program: program, Bits: h.bits})
}

// UnmarshalJSON decodes the hashtron, rejecting zero moduli
func (h *Hashtron) UnmarshalJSON(data []byte) error {
	var j jsonHashtron
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	n, err := New(j.Program, j.Bits)
	if err != nil {
		return err
	}
	*h = *n
	return nil
}

// WriteJson writes the hashtron as one line of json to a writer
func (h Hashtron) WriteJson(w io.Writer) error {
	return json.NewEncoder(w).Encode(h)
}

// ReadJson reads one line written by WriteJson. It does not read past the
// newline, so hashtrons can be streamed one after another from the same reader.
func (h *Hashtron) ReadJson(r io.Reader) error {
	line, err := readLine(r)
	if err != nil {
		return err
	}
	return h.UnmarshalJSON(line)
}

func readLine(r io.Reader) (line []byte, err error) {
	var read func() (byte, error)
	if br, ok := r.(io.ByteReader); ok {
		read = br.ReadByte
	} else {
		var buf [1]byte
		read = func() (byte, error) {
			_, err := io.ReadFull(r, buf[:])
			return buf[0], err
		}
	}
	for {
		c, err := read()
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
		if c == '\n' {
			return line, nil
		}
		line = append(line, c)
	}
}

package ensemble

import (
	"bufio"
	"compress/lzw"
	"encoding/json"
	"fmt"
	"io"

	"github.com/neurlang/letters/datasets/letters"
)

// FormatVersion is the version of the model file written by WriteCompressed
const FormatVersion = 2

type header struct {
	Version   int    `json:"version"`
	Alphabet  string `json:"alphabet"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Window    int    `json:"window"`
	Threshold byte   `json:"threshold"`
	Seed      int64  `json:"seed"`
	Hashtrons int    `json:"hashtrons"`
}

// WriteCompressed writes the model as lzw compressed json lines: the header,
// then one hashtron per line
func (e *Ensemble) WriteCompressed(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)

	h, err := json.Marshal(e.header())
	if err != nil {
		return err
	}
	if _, err = lw.Write(append(h, '\n')); err != nil {
		return err
	}
	for i := range e.hashtrons {
		if err = e.hashtrons[i].WriteJson(lw); err != nil {
			return err
		}
	}
	return lw.Close()
}

func (e *Ensemble) header() header {
	return header{
		Version:   FormatVersion,
		Alphabet:  e.Alphabet.String(),
		Width:     e.Geometry.Width,
		Height:    e.Geometry.Height,
		Window:    e.Geometry.Window,
		Threshold: e.Geometry.Threshold,
		Seed:      e.Seed,
		Hashtrons: len(e.hashtrons),
	}
}

// ReadCompressed reads a model written by WriteCompressed
func ReadCompressed(r io.Reader) (*Ensemble, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	br := bufio.NewReader(lr)

	line, err := br.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return nil, err
	}
	var h header
	if err = json.Unmarshal(line, &h); err != nil {
		return nil, err
	}
	if h.Version != FormatVersion {
		return nil, fmt.Errorf("ensemble: unsupported model version %d", h.Version)
	}
	alphabet, err := letters.ParseAlphabet(h.Alphabet)
	if err != nil {
		return nil, err
	}
	e, err := New(alphabet, letters.Geometry{
		Width:     h.Width,
		Height:    h.Height,
		Window:    h.Window,
		Threshold: h.Threshold,
	}, h.Seed)
	if err != nil {
		return nil, err
	}
	if h.Hashtrons != e.Len() {
		return nil, fmt.Errorf("ensemble: model has %d hashtrons, want %d", h.Hashtrons, e.Len())
	}
	for n := range e.hashtrons {
		if err = e.hashtrons[n].ReadJson(br); err != nil {
			return nil, fmt.Errorf("ensemble: hashtron %d: %w", n, err)
		}
	}
	if _, err = br.Peek(1); err == nil {
		return nil, fmt.Errorf("ensemble: trailing data after %d hashtrons", e.Len())
	} else if err != io.EOF {
		return nil, err
	}
	return e, nil
}

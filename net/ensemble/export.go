package ensemble

import (
	"fmt"
	"io"
)

// ExportGo writes the model as a Go source file of package pkg: the model
// parameters as constants and every hashtron program as a variable named
// after its class and position, e.g. programA_0.
func (e *Ensemble) ExportGo(w io.Writer, pkg string) error {
	_, err := fmt.Fprintf(w, "package %s\n\nconst alphabet = %q\nconst width, height, window, threshold = %d, %d, %d, %d\n\n",
		pkg, e.Alphabet.String(), e.Geometry.Width, e.Geometry.Height, e.Geometry.Window, e.Geometry.Threshold)
	if err != nil {
		return err
	}
	for n := range e.hashtrons {
		c, p := e.Locate(n)
		if err = e.hashtrons[n].WriteGo(w, programName(e.Alphabet[c], p)); err != nil {
			return err
		}
	}
	return nil
}

func programName(letter byte, p int) string {
	if ('a' <= letter && letter <= 'z') || ('A' <= letter && letter <= 'Z') || ('0' <= letter && letter <= '9') {
		return fmt.Sprintf("%c_%d", letter, p)
	}
	return fmt.Sprintf("x%02x_%d", letter, p)
}

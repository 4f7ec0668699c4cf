package letters

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ErrCorrupt is returned when a dataset artifact does not decode or verify
var ErrCorrupt = errors.New("dataset artifact is corrupt")

const (
	TrainImages = "train-images-idx3-ubyte.gz"
	TrainLabels = "train-labels-idx1-ubyte.gz"
	EvalImages  = "eval-images-idx3-ubyte.gz"
	EvalLabels  = "eval-labels-idx1-ubyte.gz"
)

const imagesMagic = 0x00000803
const labelsMagic = 0x00000801

// Digest returns the hex sha256 of data, as recorded in the manifest
func Digest(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

func gzipped(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipped(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return raw, nil
}

// encodeImages writes the pixels in idx3 format: magic, count, rows, cols, pixels
func encodeImages(samples []Sample, width, height int) ([]byte, error) {
	var raw = make([]byte, 16, 16+len(samples)*width*height)
	binary.BigEndian.PutUint32(raw[0:], imagesMagic)
	binary.BigEndian.PutUint32(raw[4:], uint32(len(samples)))
	binary.BigEndian.PutUint32(raw[8:], uint32(height))
	binary.BigEndian.PutUint32(raw[12:], uint32(width))
	for _, s := range samples {
		if len(s.Pixels) != width*height {
			return nil, fmt.Errorf("sample %q has %d pixels, want %d", s.Label, len(s.Pixels), width*height)
		}
		raw = append(raw, s.Pixels...)
	}
	return gzipped(raw)
}

// encodeLabels writes the labels in idx1 format: magic, count, labels
func encodeLabels(samples []Sample) ([]byte, error) {
	var raw = make([]byte, 8, 8+len(samples))
	binary.BigEndian.PutUint32(raw[0:], labelsMagic)
	binary.BigEndian.PutUint32(raw[4:], uint32(len(samples)))
	for _, s := range samples {
		raw = append(raw, s.Label)
	}
	return gzipped(raw)
}

func decodeImages(data []byte, width, height int) ([][]byte, error) {
	raw, err := gunzipped(data)
	if err != nil {
		return nil, err
	}
	if len(raw) < 16 || binary.BigEndian.Uint32(raw) != imagesMagic {
		return nil, fmt.Errorf("%w: bad images header", ErrCorrupt)
	}
	count := int(binary.BigEndian.Uint32(raw[4:]))
	rows := int(binary.BigEndian.Uint32(raw[8:]))
	cols := int(binary.BigEndian.Uint32(raw[12:]))
	if rows != height || cols != width {
		return nil, fmt.Errorf("%w: images are %dx%d, want %dx%d", ErrCorrupt, cols, rows, width, height)
	}
	raw = raw[16:]
	if len(raw) != count*width*height {
		return nil, fmt.Errorf("%w: images payload is %d bytes, want %d", ErrCorrupt, len(raw), count*width*height)
	}
	var images = make([][]byte, count)
	for i := range images {
		images[i] = raw[i*width*height : (i+1)*width*height : (i+1)*width*height]
	}
	return images, nil
}

func decodeLabels(data []byte) ([]byte, error) {
	raw, err := gunzipped(data)
	if err != nil {
		return nil, err
	}
	if len(raw) < 8 || binary.BigEndian.Uint32(raw) != labelsMagic {
		return nil, fmt.Errorf("%w: bad labels header", ErrCorrupt)
	}
	count := int(binary.BigEndian.Uint32(raw[4:]))
	if len(raw)-8 != count {
		return nil, fmt.Errorf("%w: labels payload is %d bytes, want %d", ErrCorrupt, len(raw)-8, count)
	}
	return raw[8:], nil
}

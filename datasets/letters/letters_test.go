package letters

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlphabet(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"letters", "AB", nil},
		{"mixed", "aZ09!", nil},
		{"empty", "", ErrEmptyAlphabet},
		{"space", "A B", ErrNotGraphic},
		{"non ascii", "A\xc3", ErrNotGraphic},
		{"repeated", "ABA", ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseAlphabet(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, a.String())
			assert.Equal(t, 1, a.Index(tt.in[1]))
			assert.Equal(t, -1, a.Index('~'))
		})
	}
}

func TestGenerateTwoLetters(t *testing.T) {
	samples, err := Generate(Options{
		Alphabet:        Alphabet("AB"),
		Width:           8,
		Height:          8,
		SamplesPerClass: 10,
		Noise:           0.02,
		Jitter:          1,
		Faces:           DefaultFaces,
	}, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, samples, 20)

	perLabel := map[byte]int{}
	for _, s := range samples {
		assert.Len(t, s.Pixels, 64)
		assert.Contains(t, []byte("AB"), s.Label)
		perLabel[s.Label]++
	}
	assert.Equal(t, map[byte]int{'A': 10, 'B': 10}, perLabel)
	assert.Equal(t, 2, Classes(samples))
}

func TestGenerateDeterministic(t *testing.T) {
	o := Options{Alphabet: Alphabet("XYZ"), Width: 12, Height: 10, SamplesPerClass: 4, Noise: 0.1, Jitter: 2, Faces: DefaultFaces}
	a, err := Generate(o, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := Generate(o, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGenerateRejects(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := Generate(Options{Width: 8, Height: 8, SamplesPerClass: 1, Faces: DefaultFaces}, rng)
	assert.ErrorIs(t, err, ErrEmptyAlphabet)
	_, err = Generate(Options{Alphabet: Alphabet("A"), Width: 8, Height: 8, Faces: DefaultFaces}, rng)
	assert.Error(t, err)
	_, err = Generate(Options{Alphabet: Alphabet("A"), Width: 8, Height: 8, SamplesPerClass: 1, Faces: []string{"comic"}}, rng)
	assert.Error(t, err)
}

func TestGlyphHasInk(t *testing.T) {
	r, err := NewRenderer(8, 8, DefaultFaces)
	require.NoError(t, err)
	for face := 0; face < r.Faces(); face++ {
		var ink int
		for _, p := range r.Glyph('A', face) {
			ink += int(p)
		}
		assert.Positive(t, ink, "face %s", DefaultFaces[face])
		assert.NotEqual(t, r.Glyph('A', face), r.Glyph('I', face))
	}
}

func TestSplitStratified(t *testing.T) {
	var samples []Sample
	for i := 0; i < 30; i++ {
		samples = append(samples, Sample{Label: "ABC"[i%3], Pixels: []byte{byte(i)}})
	}
	samples = append(samples, Sample{Label: 'D', Pixels: []byte{200}})

	train, eval := Split(samples, 0.2, rand.New(rand.NewSource(7)))
	assert.Len(t, eval, 6)
	assert.Len(t, train, 25)

	seen := map[byte]int{}
	for _, s := range append(append([]Sample{}, train...), eval...) {
		seen[s.Pixels[0]]++
	}
	assert.Len(t, seen, len(samples))
	for id, n := range seen {
		assert.Equal(t, 1, n, "sample %d", id)
	}
	for _, s := range eval {
		assert.NotEqual(t, byte('D'), s.Label, "single sample classes stay in train")
	}

	train, eval = Split(samples, 0.9, rand.New(rand.NewSource(7)))
	assert.Len(t, train, 4, "one sample per class is kept for training")
	assert.Len(t, eval, 27)
}

func TestGeometryFeature(t *testing.T) {
	g := Geometry{Width: 4, Height: 3, Window: 2, Threshold: 128}
	pixels := []byte{
		255, 0, 0, 0,
		0, 255, 0, 0,
		0, 0, 0, 200,
	}
	require.Equal(t, 6, g.Positions())
	assert.Equal(t, uint32(1|8), g.Feature(pixels, 0))
	assert.Equal(t, uint32(4), g.Feature(pixels, 1))
	assert.Equal(t, uint32(8), g.Feature(pixels, 5))
	assert.Equal(t, []uint32{9, 4, 0, 2, 1, 8}, g.Features(pixels, nil))
	assert.Zero(t, Geometry{Width: 2, Height: 2, Window: 3}.Positions())
}

func testDataset(t *testing.T) *Dataset {
	samples, err := Generate(Options{Alphabet: Alphabet("AB"), Width: 8, Height: 8, SamplesPerClass: 5, Faces: DefaultFaces}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	train, eval := Split(samples, 0.4, rand.New(rand.NewSource(3)))
	return &Dataset{Alphabet: Alphabet("AB"), Width: 8, Height: 8, Train: train, Eval: eval}
}

func TestEncodeDecode(t *testing.T) {
	d := testDataset(t)
	files, manifest, err := Encode(d, Manifest{Created: time.Unix(1700000000, 0).UTC(), SamplesPerClass: 5, Seed: 3})
	require.NoError(t, err)
	assert.Len(t, files, 4)

	m, err := ParseManifest(manifest)
	require.NoError(t, err)
	assert.Equal(t, "AB", m.Alphabet)
	assert.Equal(t, 6, m.Train)
	assert.Equal(t, 4, m.Eval)
	assert.Equal(t, []string{EvalImages, EvalLabels, TrainImages, TrainLabels}, m.FileNames())

	back, err := Decode(m, func(name string) ([]byte, error) { return files[name], nil })
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestDecodeCorrupt(t *testing.T) {
	d := testDataset(t)
	files, manifest, err := Encode(d, Manifest{})
	require.NoError(t, err)
	m, err := ParseManifest(manifest)
	require.NoError(t, err)

	t.Run("digest", func(t *testing.T) {
		_, err := Decode(m, func(name string) ([]byte, error) {
			if name == EvalLabels {
				return append([]byte{}, files[TrainLabels]...), nil
			}
			return files[name], nil
		})
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("alphabet", func(t *testing.T) {
		m2 := *m
		m2.Alphabet = "A"
		_, err := Decode(&m2, func(name string) ([]byte, error) { return files[name], nil })
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("size", func(t *testing.T) {
		m2 := *m
		m2.Width = 9
		_, err := Decode(&m2, func(name string) ([]byte, error) { return files[name], nil })
		assert.ErrorIs(t, err, ErrCorrupt)
	})
	t.Run("fetch", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Decode(m, func(name string) ([]byte, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})
	t.Run("manifest", func(t *testing.T) {
		_, err := ParseManifest([]byte("version: 99\n"))
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestFromImage(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	// dark vertical bar on white paper
	for y := 0; y < 16; y++ {
		src.SetGray(6, y, color.Gray{})
		src.SetGray(7, y, color.Gray{})
	}
	pixels := FromImage(src, 8, 8)
	require.Len(t, pixels, 64)
	assert.Greater(t, pixels[3], byte(128), "bar becomes ink")
	assert.Less(t, pixels[0], byte(128), "paper becomes background")
}

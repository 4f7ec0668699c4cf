package letters

import (
	"fmt"
	"image"
	"math/rand"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFaces lists every face the renderer knows
var DefaultFaces = []string{"basic", "gomono", "gomonobold", "goregular"}

var truetype = map[string][]byte{
	"gomono":     gomono.TTF,
	"gomonobold": gomonobold.TTF,
	"goregular":  goregular.TTF,
}

// outline size used to rasterize truetype faces before scaling down
const outlineSize = 32

// Renderer rasterizes letters into Width x Height grayscale images. It caches
// clean glyphs and is not safe for concurrent use.
type Renderer struct {
	Width, Height int

	// Noise is the fraction of pixels replaced with a random intensity
	Noise float64

	// Jitter is the maximum shift of the letter in pixels, in each direction
	Jitter int

	faces  []font.Face
	glyphs map[[2]int][]byte
}

// NewRenderer loads the named faces
func NewRenderer(width, height int, faces []string) (*Renderer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("image size %dx%d is invalid", width, height)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("no font faces")
	}
	r := &Renderer{Width: width, Height: height, glyphs: make(map[[2]int][]byte)}
	for _, name := range faces {
		if name == "basic" {
			r.faces = append(r.faces, basicfont.Face7x13)
			continue
		}
		ttf, ok := truetype[name]
		if !ok {
			return nil, fmt.Errorf("unknown font face %q", name)
		}
		f, err := opentype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse font face %q: %w", name, err)
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    outlineSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("load font face %q: %w", name, err)
		}
		r.faces = append(r.faces, face)
	}
	return r, nil
}

// Faces reports the number of loaded faces
func (r *Renderer) Faces() int {
	return len(r.faces)
}

// Glyph renders the clean, centred letter in the face, without augmentation.
func (r *Renderer) Glyph(letter byte, face int) []byte {
	var key = [2]int{int(letter), face}
	if g, ok := r.glyphs[key]; ok {
		return g
	}
	f := r.faces[face%len(r.faces)]
	s := string(rune(letter))

	bounds, _ := font.BoundString(f, s)
	w := (bounds.Max.X - bounds.Min.X).Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	ink := image.NewGray(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  ink,
		Src:  image.White,
		Face: f,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	d.DrawString(s)

	// keep the aspect ratio, leave a one pixel margin on bigger canvases
	var margin = 0
	if r.Width >= 8 && r.Height >= 8 {
		margin = 1
	}
	innerW, innerH := r.Width-2*margin, r.Height-2*margin
	scale := float64(innerW) / float64(w)
	if alt := float64(innerH) / float64(h); alt < scale {
		scale = alt
	}
	sw, sh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	if sw < 1 {
		sw = 1
	}
	if sh < 1 {
		sh = 1
	}
	x0, y0 := (r.Width-sw)/2, (r.Height-sh)/2

	dst := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	draw.ApproxBiLinear.Scale(dst, image.Rect(x0, y0, x0+sw, y0+sh), ink, ink.Bounds(), draw.Over, nil)

	r.glyphs[key] = dst.Pix
	return dst.Pix
}

// Render renders an augmented image of the letter, all randomness drawn from rng.
func (r *Renderer) Render(letter byte, face int, rng *rand.Rand) []byte {
	var clean = r.Glyph(letter, face)
	var pixels = make([]byte, r.Width*r.Height)

	var dx, dy int
	if r.Jitter > 0 {
		dx = rng.Intn(2*r.Jitter+1) - r.Jitter
		dy = rng.Intn(2*r.Jitter+1) - r.Jitter
	}
	for y := 0; y < r.Height; y++ {
		sy := y - dy
		if sy < 0 || sy >= r.Height {
			continue
		}
		for x := 0; x < r.Width; x++ {
			sx := x - dx
			if sx < 0 || sx >= r.Width {
				continue
			}
			pixels[y*r.Width+x] = clean[sy*r.Width+sx]
		}
	}
	if r.Noise > 0 {
		for i := range pixels {
			if rng.Float64() < r.Noise {
				pixels[i] = byte(rng.Intn(256))
			}
		}
	}
	return pixels
}

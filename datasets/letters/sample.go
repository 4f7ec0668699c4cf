package letters

// Sample is one labeled letter image
type Sample struct {
	Label  byte
	Pixels []byte
}

// Geometry describes the image size and how window features are cut from it
type Geometry struct {
	Width, Height int

	// Window is the side of the square window each feature covers
	Window int

	// Threshold is the intensity at or above which a pixel counts as ink
	Threshold byte
}

// Positions reports the number of window positions, which is the number of
// features per image
func (g Geometry) Positions() int {
	if g.Window < 1 || g.Window > g.Width || g.Window > g.Height {
		return 0
	}
	return (g.Width - g.Window + 1) * (g.Height - g.Window + 1)
}

// Feature extracts the n-th feature: the binarized window at position n,
// packed row by row starting from the lowest bit
func (g Geometry) Feature(pixels []byte, n int) (o uint32) {
	var cols = g.Width - g.Window + 1
	var x, y = n % cols, n / cols
	var bit uint
	for dy := 0; dy < g.Window; dy++ {
		var row = pixels[(y+dy)*g.Width+x:]
		for dx := 0; dx < g.Window; dx++ {
			if row[dx] >= g.Threshold {
				o |= 1 << bit
			}
			bit++
		}
	}
	return
}

// Features extracts all features of the image into dst, reusing its storage
func (g Geometry) Features(pixels []byte, dst []uint32) []uint32 {
	var n = g.Positions()
	if cap(dst) < n {
		dst = make([]uint32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = g.Feature(pixels, i)
	}
	return dst
}

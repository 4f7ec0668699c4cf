package letters

import (
	"image"

	"golang.org/x/image/draw"
)

// FromImage converts any image into width x height intensities the way the
// dataset stores them: bright ink on a dark background. Images with a light
// background (mean intensity above the middle) are inverted.
func FromImage(img image.Image, width, height int) []byte {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var sum int
	for _, v := range dst.Pix {
		sum += int(v)
	}
	if len(dst.Pix) > 0 && sum/len(dst.Pix) > 127 {
		for i, v := range dst.Pix {
			dst.Pix[i] = 255 - v
		}
	}
	return dst.Pix
}

package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrEmptyImage is returned when a buffer has no pixels or inconsistent dimensions.
var ErrEmptyImage = errors.New("empty image")

// Gray is a row-major single-channel buffer of intensities in [0, 255].
type Gray struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGray allocates a zeroed buffer.
func NewGray(width, height int) *Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Gray{Width: width, Height: height, Pix: make([]float64, width*height)}
}

// At returns the intensity at (x, y).
func (g *Gray) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set stores the intensity at (x, y).
func (g *Gray) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy.
func (g *Gray) Clone() *Gray {
	if g == nil {
		return nil
	}
	return &Gray{Width: g.Width, Height: g.Height, Pix: append([]float64(nil), g.Pix...)}
}

// Validate reports whether the buffer is usable for scoring.
func (g *Gray) Validate() error {
	if g == nil || g.Width <= 0 || g.Height <= 0 {
		return ErrEmptyImage
	}
	if len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("%w: %dx%d buffer holds %d samples", ErrEmptyImage, g.Width, g.Height, len(g.Pix))
	}
	return nil
}

// SameSize reports whether both buffers have identical dimensions.
func (g *Gray) SameSize(other *Gray) bool {
	return g != nil && other != nil && g.Width == other.Width && g.Height == other.Height
}

// FromImage converts any image to a Gray buffer using BT.601 luma. Alpha is
// ignored rather than composited.
func FromImage(img image.Image) *Gray {
	bounds := img.Bounds()
	out := NewGray(bounds.Dx(), bounds.Dy())

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+out.Width]
			for x, v := range row {
				out.Pix[y*out.Width+x] = float64(v)
			}
		}
	case *image.Gray16:
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				c := src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y)
				out.Pix[y*out.Width+x] = float64(c.Y) / 257
			}
		}
	case *image.NRGBA:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < out.Width; x++ {
				p := row[x*4 : x*4+3]
				out.Pix[y*out.Width+x] = luma(p[0], p[1], p[2])
			}
		}
	case *image.RGBA:
		for y := 0; y < out.Height; y++ {
			row := src.Pix[y*src.Stride:]
			for x := 0; x < out.Width; x++ {
				p := row[x*4 : x*4+3]
				out.Pix[y*out.Width+x] = luma(p[0], p[1], p[2])
			}
		}
	default:
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
				out.Pix[y*out.Width+x] = luma(c.R, c.G, c.B)
			}
		}
	}
	return out
}

func luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// ToImage converts the buffer to a 16-bit grayscale image, keeping the
// fractional part of each intensity.
func (g *Gray) ToImage() *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := g.At(x, y) * 257
			switch {
			case v < 0:
				v = 0
			case v > 0xffff:
				v = 0xffff
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v + 0.5)})
		}
	}
	return img
}

package imaging

import (
	"fmt"
	"math"
	"strings"

	"github.com/nfnt/resize"
)

// Interpolation names a resampling filter.
type Interpolation string

const (
	// InterpolationArea averages every source pixel under the destination
	// footprint, weighted by coverage.
	InterpolationArea     Interpolation = "area"
	InterpolationBilinear Interpolation = "bilinear"
	InterpolationBicubic  Interpolation = "bicubic"
	InterpolationLanczos3 Interpolation = "lanczos3"
)

// ParseInterpolation resolves a configured filter name. Blank selects area.
func ParseInterpolation(value string) (Interpolation, error) {
	switch Interpolation(strings.ToLower(strings.TrimSpace(value))) {
	case "", InterpolationArea:
		return InterpolationArea, nil
	case InterpolationBilinear:
		return InterpolationBilinear, nil
	case InterpolationBicubic:
		return InterpolationBicubic, nil
	case InterpolationLanczos3:
		return InterpolationLanczos3, nil
	default:
		return "", fmt.Errorf("unsupported interpolation %q", value)
	}
}

// ResizeTo returns a copy of candidate resampled to reference's dimensions.
func ResizeTo(reference, candidate *Gray, method Interpolation) (*Gray, error) {
	if err := reference.Validate(); err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	return Resize(candidate, reference.Width, reference.Height, method)
}

// Resize returns a copy of src resampled to width x height.
func Resize(src *Gray, width, height int, method Interpolation) (*Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, ErrEmptyImage)
	}
	if src.Width == width && src.Height == height {
		return src.Clone(), nil
	}

	switch method {
	case "", InterpolationArea:
		return ResizeArea(src, width, height)
	case InterpolationBilinear:
		return resizeFiltered(src, width, height, resize.Bilinear), nil
	case InterpolationBicubic:
		return resizeFiltered(src, width, height, resize.Bicubic), nil
	case InterpolationLanczos3:
		return resizeFiltered(src, width, height, resize.Lanczos3), nil
	default:
		return nil, fmt.Errorf("unsupported interpolation %q", method)
	}
}

func resizeFiltered(src *Gray, width, height int, filter resize.InterpolationFunction) *Gray {
	scaled := resize.Resize(uint(width), uint(height), src.ToImage(), filter)
	return FromImage(scaled)
}

// ResizeArea resamples by coverage-weighted averaging. Each destination pixel
// covers a (srcW/dstW) x (srcH/dstH) window of the source; every source pixel
// contributes in proportion to how much of it lies inside that window. The
// filter is separable, so rows are reduced first and columns second.
func ResizeArea(src *Gray, width, height int) (*Gray, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("resize to %dx%d: %w", width, height, ErrEmptyImage)
	}

	xTaps := areaTaps(src.Width, width)
	yTaps := areaTaps(src.Height, height)

	rows := make([]float64, src.Height*width)
	for y := 0; y < src.Height; y++ {
		in := src.Pix[y*src.Width : (y+1)*src.Width]
		out := rows[y*width : (y+1)*width]
		for x, taps := range xTaps {
			var sum float64
			for _, t := range taps {
				sum += in[t.index] * t.weight
			}
			out[x] = sum
		}
	}

	dst := NewGray(width, height)
	for y, taps := range yTaps {
		out := dst.Pix[y*width : (y+1)*width]
		for _, t := range taps {
			in := rows[t.index*width : (t.index+1)*width]
			for x := range out {
				out[x] += in[x] * t.weight
			}
		}
	}
	return dst, nil
}

type tap struct {
	index  int
	weight float64
}

// areaTaps computes, for each destination index, the source indices and
// normalized coverage weights along one axis.
func areaTaps(srcLen, dstLen int) [][]tap {
	scale := float64(srcLen) / float64(dstLen)
	taps := make([][]tap, dstLen)
	for d := range taps {
		start := float64(d) * scale
		end := start + scale
		first := int(math.Floor(start))
		last := int(math.Ceil(end))
		if last > srcLen {
			last = srcLen
		}
		var total float64
		list := make([]tap, 0, last-first)
		for s := first; s < last; s++ {
			overlap := math.Min(end, float64(s+1)) - math.Max(start, float64(s))
			if overlap <= 1e-12 {
				continue
			}
			list = append(list, tap{index: s, weight: overlap})
			total += overlap
		}
		for i := range list {
			list[i].weight /= total
		}
		taps[d] = list
	}
	return taps
}

// Package palette reduces canvas pixels to the colour statistics the
// music mapper works from.
package palette

import (
	"image"
	"image/draw"

	"gonum.org/v1/gonum/stat"
)

const (
	// SampleStride is the byte step through a flat RGBA buffer. 160 bytes
	// visits every 40th pixel, enough to capture the gross colour bias.
	SampleStride = 160

	// WhiteThreshold excludes near-white background pixels: a sample is
	// coloured only if some channel is below it.
	WhiteThreshold = 250

	// MaxSampledColors bounds Statistics.Colors.
	MaxSampledColors = 50

	// BlankBrightness is reported when no coloured pixel was sampled.
	BlankBrightness = 255

	// MinDrawingPixels is how many coloured samples a canvas needs before
	// it counts as a drawing at all.
	MinDrawingPixels = 5
)

// RGB is one sampled colour.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Statistics aggregates the coloured samples of a canvas.
type Statistics struct {
	AverageR      float64 `json:"average_r"`
	AverageG      float64 `json:"average_g"`
	AverageB      float64 `json:"average_b"`
	Brightness    float64 `json:"brightness"`
	ColoredPixels int     `json:"colored_pixels"`
	Colors        []RGB   `json:"colors"`
}

// HasDrawing reports whether enough pixels were coloured to treat the
// canvas as non-blank.
func (s Statistics) HasDrawing() bool {
	return s.ColoredPixels >= MinDrawingPixels
}

// Analyze samples a flat RGBA buffer. It never fails: a buffer without
// coloured samples (including an empty one) yields zero averages and
// BlankBrightness.
func Analyze(pixels []byte) Statistics {
	var sumR, sumG, sumB float64
	stats := Statistics{}

	for i := 0; i+2 < len(pixels); i += SampleStride {
		r, g, b := pixels[i], pixels[i+1], pixels[i+2]
		if r >= WhiteThreshold && g >= WhiteThreshold && b >= WhiteThreshold {
			continue
		}
		sumR += float64(r)
		sumG += float64(g)
		sumB += float64(b)
		stats.ColoredPixels++
		if len(stats.Colors) < MaxSampledColors {
			stats.Colors = append(stats.Colors, RGB{R: r, G: g, B: b})
		}
	}

	if stats.ColoredPixels == 0 {
		stats.Brightness = BlankBrightness
		return stats
	}

	n := float64(stats.ColoredPixels)
	stats.AverageR = sumR / n
	stats.AverageG = sumG / n
	stats.AverageB = sumB / n
	stats.Brightness = stat.Mean([]float64{stats.AverageR, stats.AverageG, stats.AverageB}, nil)
	return stats
}

// AnalyzeImage converts img to RGBA and analyzes it.
func AnalyzeImage(img image.Image) Statistics {
	return Analyze(ToRGBA(img).Pix)
}

// ToRGBA returns img as a tightly packed *image.RGBA. An *image.RGBA
// without row padding is returned unchanged.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

package palette

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledBuffer(pixels int, c color.RGBA) []byte {
	buf := make([]byte, pixels*4)
	for i := 0; i < pixels; i++ {
		buf[i*4] = c.R
		buf[i*4+1] = c.G
		buf[i*4+2] = c.B
		buf[i*4+3] = c.A
	}
	return buf
}

func TestAnalyze_BlankCanvas(t *testing.T) {
	stats := Analyze(filledBuffer(400*300, color.RGBA{255, 255, 255, 255}))

	assert.Equal(t, 0, stats.ColoredPixels)
	assert.Equal(t, float64(BlankBrightness), stats.Brightness)
	assert.Zero(t, stats.AverageR)
	assert.Zero(t, stats.AverageG)
	assert.Zero(t, stats.AverageB)
	assert.Empty(t, stats.Colors)
	assert.False(t, stats.HasDrawing())
}

func TestAnalyze_EmptyAndShortBuffers(t *testing.T) {
	for _, buf := range [][]byte{nil, {}, {10}, {10, 20}} {
		stats := Analyze(buf)
		assert.Equal(t, 0, stats.ColoredPixels)
		assert.Equal(t, float64(BlankBrightness), stats.Brightness)
	}
}

func TestAnalyze_UniformColor(t *testing.T) {
	stats := Analyze(filledBuffer(40*100, color.RGBA{220, 60, 40, 255}))

	assert.Equal(t, 100, stats.ColoredPixels)
	assert.InDelta(t, 220, stats.AverageR, 1e-9)
	assert.InDelta(t, 60, stats.AverageG, 1e-9)
	assert.InDelta(t, 40, stats.AverageB, 1e-9)
	assert.InDelta(t, 320.0/3.0, stats.Brightness, 1e-9)
	assert.Len(t, stats.Colors, MaxSampledColors)
	assert.Equal(t, RGB{220, 60, 40}, stats.Colors[0])
	assert.True(t, stats.HasDrawing())
}

func TestAnalyze_NearWhiteThreshold(t *testing.T) {
	// One channel at 249 is coloured; all channels at 250 is background.
	colored := Analyze(filledBuffer(40, color.RGBA{250, 249, 250, 255}))
	assert.Equal(t, 1, colored.ColoredPixels)

	background := Analyze(filledBuffer(40, color.RGBA{250, 250, 250, 255}))
	assert.Equal(t, 0, background.ColoredPixels)
}

func TestAnalyze_OnlyStridedPixelsSampled(t *testing.T) {
	buf := filledBuffer(80, color.RGBA{255, 255, 255, 255})
	// Pixel 1 sits between samples, pixel 40 is the second sample.
	copy(buf[4:8], []byte{0, 0, 0, 255})
	copy(buf[SampleStride:SampleStride+4], []byte{0, 0, 200, 255})

	stats := Analyze(buf)
	require.Equal(t, 1, stats.ColoredPixels)
	assert.Equal(t, []RGB{{0, 0, 200}}, stats.Colors)
}

func TestAnalyze_NeverProducesNaN(t *testing.T) {
	buf := []byte{0, 0, 0, 0}
	stats := Analyze(buf)
	assert.False(t, math.IsNaN(stats.Brightness))
	assert.Equal(t, 0.0, stats.Brightness)
}

func TestAnalyzeImage_MatchesBuffer(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 80, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 80; x++ {
			img.Set(x, y, color.RGBA{30, 90, 200, 255})
		}
	}

	assert.Equal(t, Analyze(img.Pix), AnalyzeImage(img))

	sub := img.SubImage(image.Rect(10, 10, 50, 40))
	stats := AnalyzeImage(sub)
	assert.Equal(t, 40*30/40, stats.ColoredPixels)
	assert.InDelta(t, 200, stats.AverageB, 1e-9)
}

func TestDecodeDataURL(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	decoded, err := DecodeDataURL("data:image/png;base64," + encoded)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	bare, err := DecodeDataURL(encoded)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), bare.Bounds())
}

func TestDecodeDataURL_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "  ", ErrEmptyImage},
		{"no separator", "data:image/png;base64", ErrInvalidImage},
		{"not base64", "data:image/png,abc", ErrInvalidImage},
		{"bad payload", "data:image/png;base64,!!!", ErrInvalidImage},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello")), ErrInvalidImage},
		{"oversized header", base64.StdEncoding.EncodeToString(headerOnlyPNG(12000, 12000)), ErrInvalidImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDataURL(tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// headerOnlyPNG returns a PNG that declares w x h RGBA pixels but carries
// no pixel data.
func headerOnlyPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := func(kind string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(kind), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IDAT", nil)
	chunk("IEND", nil)
	return buf.Bytes()
}

func TestDecodeImage_RejectsOversizedHeader(t *testing.T) {
	raw := headerOnlyPNG(12000, 12000)
	require.Less(t, len(raw), 100)

	_, err := DecodeImage(bytes.NewReader(raw))
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "exceeds")

	_, err = DecodeImage(bytes.NewReader(nil))
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestDecodeImage_AcceptsLimitSizedCanvas(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4096, 4096))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	decoded, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, MaxPixels, decoded.Bounds().Dx()*decoded.Bounds().Dy())
}

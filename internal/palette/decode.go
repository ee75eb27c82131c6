package palette

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
)

// MaxPixels bounds the declared size of a decoded image. Decoders allocate
// the full pixel buffer from the header, so larger images are rejected
// before decoding.
const MaxPixels = 4096 * 4096

var (
	ErrEmptyImage   = errors.New("image data is empty")
	ErrInvalidImage = errors.New("invalid image data")
)

// DecodeImage decodes a PNG or JPEG stream.
func DecodeImage(r io.Reader) (image.Image, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// DecodeDataURL decodes a canvas export such as
// "data:image/png;base64,iVBOR...". A bare base64 payload is accepted too.
func DecodeDataURL(dataURL string) (image.Image, error) {
	payload := strings.TrimSpace(dataURL)
	if payload == "" {
		return nil, ErrEmptyImage
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: missing data URL separator", ErrInvalidImage)
		}
		if !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, fmt.Errorf("%w: data URL is not base64 encoded", ErrInvalidImage)
		}
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyImage
	}
	return DecodeImage(bytes.NewReader(raw))
}

// Package imaging sniffs uploaded image payloads and renders thumbnails.
// Stored bytes are never re-encoded; thumbnails are produced on demand.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Thumbnail bounds in pixels.
const (
	MinDimension = 16
	MaxDimension = 1024
)

// JPEGQuality is the compression quality for thumbnail output.
const JPEGQuality = 85

// ErrNotImage is returned for payloads whose content is not an image.
var ErrNotImage = errors.New("not an image")

// Result is a rendered image.
type Result struct {
	Data []byte
	MIME string
}

// Sniff detects the MIME type from the payload bytes, ignoring whatever the
// client claimed. Only image types are accepted.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload: %w", ErrNotImage)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("detected %s: %w", mtype.String(), ErrNotImage)
	}

	// Drop parameters such as charset on image/svg+xml.
	mime, _, _ := strings.Cut(mtype.String(), ";")
	return mime, nil
}

// ClampDimension limits a requested thumbnail bound to the supported range.
func ClampDimension(n int) int {
	return max(MinDimension, min(n, MaxDimension))
}

// Thumbnail returns the image scaled so neither side exceeds maxDim. Images
// already within bounds are returned unchanged with their detected type;
// anything scaled is re-encoded as JPEG over a white background.
func Thumbnail(data []byte, maxDim int) (*Result, error) {
	maxDim = ClampDimension(maxDim)

	mime, err := Sniff(data)
	if err != nil {
		return nil, err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return &Result{Data: data, MIME: mime}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = downscale(img, maxDim)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	return &Result{
		Data: buf.Bytes(),
		MIME: "image/jpeg",
	}, nil
}

// downscale resizes the image so neither dimension exceeds maxDim.
// Uses high-quality Catmull-Rom interpolation.
// Returns the original image if already within bounds.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	if w <= maxDim && h <= maxDim {
		return img
	}

	// Preserve aspect ratio.
	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}

	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	// JPEG has no alpha; transparent pixels end up white.
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

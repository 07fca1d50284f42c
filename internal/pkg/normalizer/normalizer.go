package normalizer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/ds124wfegd/autotagger/internal/entity"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWidth     = 600
	DefaultQuality   = 90
	DefaultMaxPixels = 50_000_000
)

var (
	errEmptyImage = errors.New("image has no pixels")
	errTooLarge   = errors.New("image dimensions too large")
)

type Normalizer interface {
	Normalize(r io.Reader) (entity.EncodedPayload, error)
	NormalizeImage(img image.Image) (entity.EncodedPayload, error)
}

type imageNormalizer struct {
	width     int
	quality   int
	maxPixels int
}

func NewNormalizer(width, quality, maxPixels int) Normalizer {
	if width <= 0 {
		width = DefaultWidth
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &imageNormalizer{width: width, quality: quality, maxPixels: maxPixels}
}

// Normalize decodes an upload and turns it into a tagging payload. The
// header is checked first so oversized images are rejected before their
// pixels are allocated.
func (n *imageNormalizer) Normalize(r io.Reader) (entity.EncodedPayload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: err}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: errEmptyImage}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(n.maxPixels) {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{
			Err: fmt.Errorf("%w: %dx%d exceeds %d pixels", errTooLarge, cfg.Width, cfg.Height, n.maxPixels),
		}
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: err}
	}
	return n.NormalizeImage(img)
}

// NormalizeImage scales img to the configured width, flattens it onto an
// opaque white background and returns the base64 of its JPEG encoding.
func (n *imageNormalizer) NormalizeImage(img image.Image) (entity.EncodedPayload, error) {
	if img == nil {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: errEmptyImage}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return entity.EncodedPayload{}, &entity.ImageDecodeError{Err: errEmptyImage}
	}

	height := TargetHeight(b.Dx(), b.Dy(), n.width)
	resized := imaging.Resize(img, n.width, height, imaging.Lanczos)
	rgb := toRGB(resized)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, rgb, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return entity.EncodedPayload{}, &entity.ImageEncodeError{Err: err}
	}

	return entity.EncodedPayload{
		Data:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:  n.width,
		Height: height,
	}, nil
}

// TargetHeight keeps the aspect ratio for a fixed target width.
func TargetHeight(width, height, targetWidth int) int {
	if width <= 0 {
		return 0
	}
	h := int(math.Round(float64(height) * float64(targetWidth) / float64(width)))
	if h < 1 {
		h = 1
	}
	return h
}

// toRGB drops the alpha channel by compositing over white, JPEG cannot
// carry transparency.
func toRGB(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, img, image.Pt(0, 0), 1.0)
}

// Package imaging decodes kiosk frames and prepares the probe images sent to
// the embedding server.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/lab-kiosk/internal/constants"
)

// ErrDecode is returned when the bytes are not a decodable image.
var ErrDecode = errors.New("failed to decode image")

// Decode decodes an uploaded frame. The format name is returned for logging.
// Images declaring more than constants.MaxImagePixels pixels are rejected
// before any pixel data is read.
func Decode(data []byte) (image.Image, string, error) {
	return decodeLimited(data, constants.MaxImagePixels)
}

func decodeLimited(data []byte, maxPixels int) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty data", ErrDecode)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrDecode)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, maxPixels)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, "", fmt.Errorf("%w: empty image", ErrDecode)
	}
	return img, format, nil
}

// toRGBA copies img into a zero-origin RGBA image.
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Mirror returns a horizontally flipped copy of img.
func Mirror(img image.Image) *image.RGBA {
	out := toRGBA(img)
	w, h := out.Rect.Dx(), out.Rect.Dy()

	for y := range h {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for left, right := 0, w-1; left < right; left, right = left+1, right-1 {
			l, r := left*4, right*4
			for c := range 4 {
				row[l+c], row[r+c] = row[r+c], row[l+c]
			}
		}
	}
	return out
}

// EncodeJPEG encodes img as JPEG with the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// Probes decodes a frame and returns JPEG encodings of the frame and of its mirror.
func Probes(data []byte, quality int) (original, mirrored []byte, err error) {
	img, _, err := Decode(data)
	if err != nil {
		return nil, nil, err
	}

	original, err = EncodeJPEG(img, quality)
	if err != nil {
		return nil, nil, err
	}
	mirrored, err = EncodeJPEG(Mirror(img), quality)
	if err != nil {
		return nil, nil, err
	}
	return original, mirrored, nil
}

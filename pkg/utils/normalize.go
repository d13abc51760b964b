package utils

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported image format (need jpeg/png/webp)")

// NormalizeToJPG decodes a jpeg/png/webp image, applies the EXIF
// orientation, shrinks it to maxWidth (0 keeps the size) and re-encodes
// it as JPEG.
func NormalizeToJPG(input []byte, maxWidth int, quality int) ([]byte, error) {
	if len(input) == 0 {
		return nil, errors.New("empty image")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	img, _, err := decodeImage(bytes.NewReader(input))
	if err != nil {
		return nil, err
	}

	img = orient(img, exifOrientation(bytes.NewReader(input)))
	if maxWidth > 0 {
		img = fitWidth(img, maxWidth)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeImage(r *bytes.Reader) (image.Image, string, error) {
	decoders := []struct {
		name   string
		decode func(io.Reader) (image.Image, error)
	}{
		{"jpeg", jpeg.Decode},
		{"png", png.Decode},
		{"webp", webp.Decode},
	}
	for _, d := range decoders {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, "", err
		}
		if img, err := d.decode(r); err == nil {
			return img, d.name, nil
		}
	}
	return nil, "", ErrUnsupportedImage
}

// exifOrientation returns 1 (as stored) when the tag is missing.
func exifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// orient maps EXIF orientation 2..8 onto flips and quarter turns.
func orient(src image.Image, o int) image.Image {
	switch o {
	case 2:
		return remap(src, false, mirrorX)
	case 3:
		return remap(src, false, turn180)
	case 4:
		return remap(src, false, mirrorY)
	case 5:
		return remap(remap(src, false, mirrorX), true, turnCW)
	case 6:
		return remap(src, true, turnCW)
	case 7:
		return remap(remap(src, false, mirrorX), true, turnCCW)
	case 8:
		return remap(src, true, turnCCW)
	}
	return src
}

type pixelMap func(x, y, w, h int) (int, int)

func mirrorX(x, y, w, _ int) (int, int) { return w - 1 - x, y }
func mirrorY(x, y, _, h int) (int, int) { return x, h - 1 - y }
func turn180(x, y, w, h int) (int, int) { return w - 1 - x, h - 1 - y }
func turnCW(x, y, _, h int) (int, int)  { return h - 1 - y, x }
func turnCCW(x, y, w, _ int) (int, int) { return y, w - 1 - x }

// remap copies every pixel of src to its mapped position. swap marks maps
// that exchange width and height.
func remap(src image.Image, swap bool, m pixelMap) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if swap {
		dw, dh = h, w
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := m(x, y, w, h)
			dst.Set(dx, dy, src.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func fitWidth(src image.Image, maxW int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || w <= maxW {
		return src
	}

	newH := int(math.Round(float64(h) * float64(maxW) / float64(w)))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

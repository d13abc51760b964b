package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDataURLRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("hello"),
		{0x00, 0xff, 0x10, 0x80},
		pngBytes(t, 4, 3),
	}
	for _, p := range payloads {
		s := EncodeDataURL("image/png", p)
		assert.True(t, strings.HasPrefix(s, "data:image/png;base64,"))

		m, got, err := DecodeDataURL(s)
		require.NoError(t, err)
		assert.Equal(t, "image/png", m)
		assert.Equal(t, p, got)
	}
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, s := range []string{
		"",
		"image/png;base64,AAAA",
		"data:image/png;base64",
		"data:text/plain,hello",
		"data:image/png;base64,@@@",
	} {
		_, _, err := DecodeDataURL(s)
		assert.ErrorIs(t, err, ErrInvalidDataURL, s)
	}
}

func TestDetectMIME(t *testing.T) {
	assert.Equal(t, "image/png", DetectMIME(pngBytes(t, 2, 2), "application/pdf"))
	assert.Equal(t, "application/pdf", DetectMIME([]byte("%PDF-1.4 ..."), ""))
	assert.Equal(t, "image/heic", DetectMIME([]byte{0x01, 0x02, 0x03}, "image/heic"))
	assert.True(t, IsImageMIME("image/jpeg"))
	assert.False(t, IsImageMIME("application/pdf"))
}

func TestPayloadMIME(t *testing.T) {
	csv := []byte("month,salary\n2026-01,8500000\n")
	assert.Equal(t, "text/csv", PayloadMIME(csv, "text/csv"))
	assert.Equal(t, "text/plain; charset=utf-8", PayloadMIME(csv, " text/plain; charset=utf-8 "))
	assert.Equal(t, "application/json", PayloadMIME([]byte(`{"a":1}`), "application/json"))

	// nothing usable declared
	assert.Equal(t, "image/png", PayloadMIME(pngBytes(t, 2, 2), ""))
	assert.Equal(t, "application/pdf", PayloadMIME([]byte("%PDF-1.4 ..."), "not a type"))
	assert.Equal(t, "text/plain", PayloadMIME(csv, "text/csv,evil"))
}

func TestNormalizeToJPG(t *testing.T) {
	out, err := NormalizeToJPG(pngBytes(t, 40, 20), 10, 90)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 5, img.Bounds().Dy())

	_, err = NormalizeToJPG([]byte("not an image"), 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = NormalizeToJPG(nil, 0, 0)
	assert.Error(t, err)
}

func TestOrient(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.RGBA{R: 255, A: 255})

	cw := orient(src, 6)
	assert.Equal(t, 2, cw.Bounds().Dx())
	assert.Equal(t, 3, cw.Bounds().Dy())
	r, _, _, _ := cw.At(1, 0).RGBA()
	assert.NotZero(t, r, "top-left moves to top-right after a clockwise turn")

	same := orient(src, 1)
	assert.Equal(t, src, same)
}

func TestReadAllLimit(t *testing.T) {
	b, err := ReadAllLimit(strings.NewReader("abc"), 3)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))

	_, err = ReadAllLimit(strings.NewReader("abcd"), 3)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

package portal

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/SundayYogurt/lending_portal/pkg/utils"
)

const DefaultMaxFileBytes = 5 * 1024 * 1024

// File is one user-selected attachment. MIMEType is what the picker
// declared and is carried into the payload unchanged; the content is
// only sniffed for image checks or when nothing was declared.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Encoded is the outcome of one asynchronous encode.
type Encoded struct {
	Payload  string
	MIMEType string
	Err      error
}

// Encoder turns files into data URL payloads for JSON transport.
type Encoder struct {
	MaxBytes int64
}

func NewEncoder(maxBytes int64) Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}
	return Encoder{MaxBytes: maxBytes}
}

func (e Encoder) limit() int64 {
	if e.MaxBytes <= 0 {
		return DefaultMaxFileBytes
	}
	return e.MaxBytes
}

// ReadFile reads at most MaxBytes from r.
func (e Encoder) ReadFile(r io.Reader, name, declaredMIME string) (File, error) {
	b, err := utils.ReadAllLimit(r, e.limit())
	if errors.Is(err, utils.ErrFileTooLarge) {
		return File{}, invalid(name, fmt.Sprintf("file is larger than %d bytes", e.limit()))
	}
	if err != nil {
		return File{}, err
	}
	return File{Name: name, MIMEType: declaredMIME, Data: b}, nil
}

// Encode checks size and, when imageOnly is set, that the content is an
// image. It returns the payload and the MIME type written into it.
func (e Encoder) Encode(f File, imageOnly bool) (string, string, error) {
	if len(f.Data) == 0 {
		return "", "", invalid(f.Name, "file is empty")
	}
	if int64(len(f.Data)) > e.limit() {
		return "", "", invalid(f.Name, fmt.Sprintf("file is larger than %d bytes", e.limit()))
	}

	if imageOnly {
		if sniffed := utils.DetectMIME(f.Data, ""); !utils.IsImageMIME(sniffed) {
			return "", "", invalid(f.Name, "file must be an image, got "+sniffed)
		}
	}
	mimeType := utils.PayloadMIME(f.Data, f.MIMEType)
	return utils.EncodeDataURL(mimeType, f.Data), mimeType, nil
}

// EncodeAsync runs Encode in its own goroutine. The channel receives
// exactly one value and is then closed.
func (e Encoder) EncodeAsync(ctx context.Context, f File, imageOnly bool) <-chan Encoded {
	out := make(chan Encoded, 1)
	go func() {
		defer close(out)
		if err := ctx.Err(); err != nil {
			out <- Encoded{Err: err}
			return
		}
		payload, mimeType, err := e.Encode(f, imageOnly)
		out <- Encoded{Payload: payload, MIMEType: mimeType, Err: err}
	}()
	return out
}

// Decode reverses Encode, returning the MIME type and the original bytes.
func Decode(payload string) (string, []byte, error) {
	mimeType, b, err := utils.DecodeDataURL(payload)
	if err != nil {
		return "", nil, invalid("payload", err.Error())
	}
	return mimeType, b, nil
}

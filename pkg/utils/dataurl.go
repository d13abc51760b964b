package utils

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var ErrInvalidDataURL = errors.New("invalid data url")

// EncodeDataURL renders data:<mime>;base64,<payload>.
func EncodeDataURL(mimeType string, b []byte) string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(b)))
	sb.WriteString("data:")
	sb.WriteString(mimeType)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(b))
	return sb.String()
}

// DecodeDataURL is the inverse of EncodeDataURL. Only base64 payloads are
// accepted.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return "", nil, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURL)
	}

	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mimeType, b, nil
}

// DetectMIME sniffs the content type. A declared type is only used when
// sniffing is inconclusive.
func DetectMIME(b []byte, declared string) string {
	sniffed := http.DetectContentType(b)
	if base, _, err := mime.ParseMediaType(sniffed); err == nil {
		sniffed = base
	}
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	if declared != "" {
		if base, _, err := mime.ParseMediaType(declared); err == nil {
			return base
		}
	}
	return sniffed
}

func IsImageMIME(m string) bool {
	return strings.HasPrefix(m, "image/")
}

// PayloadMIME is the type written into a data URL: the declared type as
// given (parameters included) when it parses, otherwise the sniffed one.
func PayloadMIME(b []byte, declared string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.Contains(declared, ",") {
		if _, _, err := mime.ParseMediaType(declared); err == nil {
			return declared
		}
	}
	return DetectMIME(b, "")
}

// Package media converts raw attachment bytes to and from the inline media
// reference format the model API and the front-end share:
// "data:<mime>;base64,<payload>".
package media

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/clarity-ai/clarity/internal/domain"
)

const prefix = "data:"

// Encode builds an inline media reference from raw bytes. When mimeType is
// empty it is sniffed from the content.
func Encode(data []byte, mimeType string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty payload", domain.ErrUnsupportedMedia)
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return prefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// EncodeReader reads the stream to completion and encodes it. A read failure
// means the caller's byte stream is unusable, so it maps to
// ErrUnsupportedMedia.
func EncodeReader(r io.Reader, mimeType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}
	return Encode(data, mimeType)
}

// Decode splits an inline media reference back into bytes and MIME type.
// Round-trips with Encode exactly.
func Decode(ref string) ([]byte, string, error) {
	if !strings.HasPrefix(ref, prefix) {
		return nil, "", fmt.Errorf("%w: missing data prefix", domain.ErrUnsupportedMedia)
	}
	rest := strings.TrimPrefix(ref, prefix)
	mimeType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || mimeType == "" {
		return nil, "", fmt.Errorf("%w: malformed reference", domain.ErrUnsupportedMedia)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrUnsupportedMedia, err)
	}
	return data, mimeType, nil
}

// MIMEType reports the MIME type of a reference without decoding the payload.
func MIMEType(ref string) (string, error) {
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("%w: missing data prefix", domain.ErrUnsupportedMedia)
	}
	rest := strings.TrimPrefix(ref, prefix)
	mimeType, _, ok := strings.Cut(rest, ";base64,")
	if !ok || mimeType == "" {
		return "", fmt.Errorf("%w: malformed reference", domain.ErrUnsupportedMedia)
	}
	return mimeType, nil
}

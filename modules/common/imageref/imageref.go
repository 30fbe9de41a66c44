// Package imageref holds the canonical image reference returned by generation:
// either an absolute URL or inline bytes rendered as a data URL, never both.
package imageref

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const DefaultMimeType = "image/png"

var ErrNotDataURL = errors.New("not a base64 data URL")

type Ref struct {
	url      string
	mimeType string
	data     []byte
}

// Remote wraps a provider- or storage-hosted URL.
func Remote(url string) Ref {
	return Ref{url: url}
}

// Inline wraps raw image bytes. An empty mime type defaults to image/png.
func Inline(mimeType string, data []byte) Ref {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return Ref{mimeType: mimeType, data: data}
}

// InlineBase64 decodes a standard base64 payload into an inline reference.
func InlineBase64(mimeType, payload string) (Ref, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Ref{}, fmt.Errorf("decode base64 payload: %w", err)
	}
	return Inline(mimeType, data), nil
}

// Parse accepts either a data URL or anything else, which is kept as a remote URL.
func Parse(s string) (Ref, error) {
	if !IsDataURL(s) {
		return Remote(s), nil
	}
	return ParseDataURL(s)
}

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL decodes "data:<mime>;base64,<payload>".
func ParseDataURL(s string) (Ref, error) {
	if !IsDataURL(s) {
		return Ref{}, ErrNotDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return Ref{}, ErrNotDataURL
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return Ref{}, ErrNotDataURL
	}
	return InlineBase64(mimeType, payload)
}

func (r Ref) IsInline() bool {
	return r.url == "" && r.data != nil
}

func (r Ref) IsZero() bool {
	return r.url == "" && r.data == nil
}

// URL returns the remote URL; empty for inline references.
func (r Ref) URL() string {
	return r.url
}

func (r Ref) MimeType() string {
	return r.mimeType
}

// Data returns the inline bytes; nil for remote references.
func (r Ref) Data() []byte {
	return r.data
}

// Base64 returns the inline payload encoded with standard base64.
func (r Ref) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// String renders the reference the way clients receive it.
func (r Ref) String() string {
	if r.IsInline() {
		return "data:" + r.mimeType + ";base64," + r.Base64()
	}
	return r.url
}

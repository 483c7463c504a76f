package domain

import (
	"path/filepath"
	"strings"
)

// RawDocument represents uploaded bytes before extraction.
type RawDocument struct {
	// Name is the upload's name, usually the original file name.
	Name string

	// MIMEType is the resolved content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Format is an accepted upload type.
type Format string

// Accepted upload formats.
const (
	FormatPDF      Format = "pdf"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
)

// MIMEType returns the content type handled for this format.
func (f Format) MIMEType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatText:
		return "text/plain"
	case FormatMarkdown:
		return "text/markdown"
	default:
		return ""
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// ParseFormat resolves a declared upload type. Both short names ("pdf",
// ".txt") and MIME types ("application/pdf") are recognised.
func ParseFormat(declared string) (Format, error) {
	d := strings.ToLower(strings.TrimSpace(declared))
	d = strings.TrimPrefix(d, ".")
	if i := strings.IndexByte(d, ';'); i >= 0 {
		d = strings.TrimSpace(d[:i])
	}

	switch d {
	case "pdf", "application/pdf":
		return FormatPDF, nil
	case "txt", "text", "text/plain":
		return FormatText, nil
	case "md", "markdown", "text/markdown", "text/x-markdown":
		return FormatMarkdown, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// FormatFromName guesses the declared type from a file name's extension.
func FormatFromName(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Package content provides helpers for documents stored as data URIs: MIME
// inspection, download filename extensions, inline-preview checks and
// embedding local files into data URIs.
package content

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

// ErrTooLarge is returned by EmbedFile when the file exceeds the advisory
// size limit. Embedded documents count against the snapshot quota, so large
// files should be referenced by URL instead.
var ErrTooLarge = errors.New("content: file too large to embed")

// extensions maps the document MIME types the application accepts to their
// download filename extensions.
var extensions = map[string]string{
	"application/pdf":    "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/vnd.ms-powerpoint":                                           "ppt",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": "pptx",
}

// MIMEFromDataURI extracts the MIME type of a data URI. A plain URL or a
// malformed data URI yields "".
func MIMEFromDataURI(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return ""
	}
	rest := uri[len("data:"):]
	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// ExtensionFromDataURI picks a download filename extension for a data URI.
// Known document types map to their conventional extension, other types fall
// back to the MIME subtype, anything unrecognizable becomes "bin".
func ExtensionFromDataURI(uri string) string {
	mime := MIMEFromDataURI(uri)
	if mime == "" {
		return "bin"
	}
	if ext, ok := extensions[mime]; ok {
		return ext
	}
	if i := strings.Index(mime, "/"); i >= 0 && i+1 < len(mime) {
		return mime[i+1:]
	}
	return "bin"
}

// CanPreviewInline reports whether a document reference can be rendered
// inline. Only embedded PDFs qualify; other office formats need a download.
func CanPreviewInline(uri string) bool {
	return MIMEFromDataURI(uri) == "application/pdf"
}

// EmbedFile reads a local file and encodes it as a base64 data URI. The MIME
// type is derived from the filename extension, falling back to
// application/octet-stream. Files larger than maxBytes are rejected with
// ErrTooLarge; maxBytes <= 0 disables the limit.
func EmbedFile(path string, maxBytes int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrTooLarge, path, info.Size(), maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	// TypeByExtension may append parameters like "; charset=utf-8"
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

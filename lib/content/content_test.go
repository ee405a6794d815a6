package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMIMEFromDataURI(t *testing.T) {
	for name, tc := range map[string]struct {
		uri  string
		want string
	}{
		"Base64PDF":    {"data:application/pdf;base64,JVBERi0=", "application/pdf"},
		"PlainText":    {"data:text/plain,hello", "text/plain"},
		"PlainURL":     {"https://example.com/book.pdf", ""},
		"EmptyString":  {"", ""},
		"NoSeparators": {"data:application/pdf", ""},
	} {
		t.Run(name, func(t *testing.T) {
			if got := MIMEFromDataURI(tc.uri); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestExtensionFromDataURI(t *testing.T) {
	for name, tc := range map[string]struct {
		uri  string
		want string
	}{
		"PDF":             {"data:application/pdf;base64,JVBERi0=", "pdf"},
		"Doc":             {"data:application/msword;base64,AAAA", "doc"},
		"Docx":            {"data:application/vnd.openxmlformats-officedocument.wordprocessingml.document;base64,AAAA", "docx"},
		"Ppt":             {"data:application/vnd.ms-powerpoint;base64,AAAA", "ppt"},
		"Pptx":            {"data:application/vnd.openxmlformats-officedocument.presentationml.presentation;base64,AAAA", "pptx"},
		"SubtypeFallback": {"data:image/png;base64,AAAA", "png"},
		"PlainURL":        {"https://example.com/book", "bin"},
	} {
		t.Run(name, func(t *testing.T) {
			if got := ExtensionFromDataURI(tc.uri); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCanPreviewInline(t *testing.T) {
	if !CanPreviewInline("data:application/pdf;base64,JVBERi0=") {
		t.Error("expected embedded PDFs to preview inline")
	}
	if CanPreviewInline("data:application/msword;base64,AAAA") {
		t.Error("expected word documents to require a download")
	}
	if CanPreviewInline("https://example.com/book.pdf") {
		t.Error("expected plain URLs to require a download")
	}
}

func TestEmbedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	t.Run("RoundTrip", func(t *testing.T) {
		uri, err := EmbedFile(path, 0)
		if err != nil {
			t.Fatalf("failed to embed: %v", err)
		}
		if !strings.HasPrefix(uri, "data:application/pdf;base64,") {
			t.Errorf("expected a pdf data URI, got %q", uri)
		}
		if MIMEFromDataURI(uri) != "application/pdf" {
			t.Errorf("expected embedded MIME to round-trip, got %q", MIMEFromDataURI(uri))
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		if _, err := EmbedFile(path, 4); !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	})

	t.Run("UnknownExtension", func(t *testing.T) {
		raw := filepath.Join(dir, "blob.shelfdata")
		if err := os.WriteFile(raw, []byte{0x00, 0x01}, 0o644); err != nil {
			t.Fatalf("failed to write test file: %v", err)
		}
		uri, err := EmbedFile(raw, 0)
		if err != nil {
			t.Fatalf("failed to embed: %v", err)
		}
		if !strings.HasPrefix(uri, "data:application/octet-stream;base64,") {
			t.Errorf("expected octet-stream fallback, got %q", uri)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := EmbedFile(filepath.Join(dir, "missing.pdf"), 0); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gasmap/internal/domain"
)

// Importer reads a network document from a given format
type Importer interface {
	Parse(r io.Reader) (*domain.Document, error)
	Format() string
}

// Exporter writes a network document in a given format
type Exporter interface {
	Export(doc *domain.Document, w io.Writer) error
	Format() string
}

// Codec both reads and writes one format.
type Codec interface {
	Importer
	Exporter
}

// ErrUnsupportedFormat is returned for a format name with no codec.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Extension of the native document format.
const Extension = ".mj5"

// ForFormat returns the codec registered under a format name.
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "mj5", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

// ForPath picks a codec from the file extension. A path without an
// extension is rejected.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no file extension", ErrUnsupportedFormat, path)
	}
	return ForFormat(ext)
}

package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gasmap/internal/domain"
)

// JSONCodec reads and writes .mj5 documents
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "mj5"
}

// Parse decodes and validates a document. Unknown fields are rejected.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Document, error) {
	var doc domain.Document
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, jsonFormatError(err)
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Export writes the document as indented JSON
func (c *JSONCodec) Export(doc *domain.Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

func jsonFormatError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &domain.FileFormatError{
			Field:  typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &domain.FileFormatError{Reason: fmt.Sprintf("invalid JSON at offset %d: %v", syntaxErr.Offset, err)}
	}
	if errors.Is(err, io.EOF) {
		return &domain.FileFormatError{Reason: "empty document"}
	}
	return &domain.FileFormatError{Reason: err.Error()}
}

package codec

import (
	"errors"
	"fmt"
	"io"

	"gasmap/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec reads and writes documents as YAML, for hand editing and diffs
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse decodes and validates a document. Unknown fields are rejected.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Document, error) {
	var doc domain.Document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &domain.FileFormatError{Reason: "empty document"}
		}
		return nil, &domain.FileFormatError{Reason: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Export writes the document as YAML
func (c *YAMLCodec) Export(doc *domain.Document, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

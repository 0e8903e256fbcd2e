package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"gasmap/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report document field names rather than Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks a decoded document for a supported version and the
// required record fields.
func Validate(doc *domain.Document) error {
	if doc == nil {
		return &domain.FileFormatError{Reason: "empty document"}
	}
	if err := validate.Struct(doc); err != nil {
		return formatValidationError(err)
	}
	if !domain.SupportedVersion(doc.Version) {
		return &domain.FileFormatError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported version %q", doc.Version),
		}
	}
	return nil
}

// formatValidationError converts the first validator error to a
// FileFormatError naming the offending field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &domain.FileFormatError{Reason: err.Error()}
	}

	e := validationErrs[0]
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	var reason string
	switch e.Tag() {
	case "required":
		reason = "field is required"
	case "oneof":
		reason = fmt.Sprintf("must be one of %s", e.Param())
	case "len":
		reason = fmt.Sprintf("must have exactly %s elements", e.Param())
	case "gte":
		reason = fmt.Sprintf("must be at least %s", e.Param())
	case "lte":
		reason = fmt.Sprintf("must not exceed %s", e.Param())
	default:
		reason = fmt.Sprintf("validation failed (%s)", e.Tag())
	}
	return &domain.FileFormatError{Field: field, Reason: reason}
}

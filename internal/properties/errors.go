package properties

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/ioc/internal/typeinfo"
)

var (
	ErrPathEmpty     = errors.New("properties document path is empty")
	ErrSchemaInvalid = errors.New("properties schema must be a pointer to struct")
)

var (
	_ error = UnsupportedFormatError{}
	_ error = ParseError{}
	_ error = UnknownKeyError{}
	_ error = MissingKeyError{}
	_ error = SchemaValidationError{}
)

// UnsupportedFormatError indicates the document extension maps to no parser.
type UnsupportedFormatError struct {
	Path      string
	Extension string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported properties format %q for %s (supported: %s)",
		e.Extension, e.Path, strings.Join(SupportedExtensions(), ", "))
}

// ParseError indicates the document could not be decoded in its format.
type ParseError struct {
	Path   string
	Format string
	Cause  error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s as %s: %v", e.Path, e.Format, e.Cause)
}

func (e ParseError) Unwrap() error {
	return e.Cause
}

// UnknownKeyError indicates a document key with no registered schema.
type UnknownKeyError struct {
	Key   string
	Known []string
}

func (e UnknownKeyError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown properties key %q: no properties schema is registered", e.Key)
	}
	return fmt.Sprintf("unknown properties key %q, expected one of [%s]", e.Key, strings.Join(e.Known, ", "))
}

// MissingKeyError indicates a registered schema with no document key.
type MissingKeyError struct {
	Key    string
	Schema reflect.Type
}

func (e MissingKeyError) Error() string {
	return fmt.Sprintf("properties key %q for %s is not found in the properties document",
		e.Key, typeinfo.Format(e.Schema))
}

// SchemaValidationError lists every offending field of one document value.
type SchemaValidationError struct {
	Key    string
	Schema reflect.Type
	Fields []string
}

func (e SchemaValidationError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("properties %q does not match %s:", e.Key, typeinfo.Format(e.Schema)))
	for _, f := range e.Fields {
		b.WriteString("\n  • ")
		b.WriteString(f)
	}
	return b.String()
}

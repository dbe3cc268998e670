package inject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/typeinfo"
)

var (
	// ErrNotFound is the cause when no component or bean carries the name.
	ErrNotFound = errors.New("no component or bean provides this dependency")
)

var (
	_ error = DependencyResolutionError{}
	_ error = PropertiesNotLoadedError{}
	_ error = CircularDependencyError{}
	_ error = TypeMismatchError{}
)

// DependencyResolutionError indicates a declared field could not be resolved
// or assigned.
type DependencyResolutionError struct {
	Kind   registry.Kind
	Entity string
	Field  string
	Type   reflect.Type
	Cause  error
}

func (e DependencyResolutionError) Error() string {
	msg := fmt.Sprintf("dependency resolution failed for %s %s: field %s requires %s (looked up as %q)",
		e.Kind, e.Entity, e.Field, typeinfo.Format(e.Type), typeinfo.NameOf(e.Type))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e DependencyResolutionError) Unwrap() error {
	return e.Cause
}

// PropertiesNotLoadedError indicates a field of a Properties type whose key
// has no loaded instance.
type PropertiesNotLoadedError struct {
	Kind   registry.Kind
	Entity string
	Field  string
	Key    string
	Type   reflect.Type
}

func (e PropertiesNotLoadedError) Error() string {
	return fmt.Sprintf("properties not loaded for %s %s: field %s requires %s with key %q",
		e.Kind, e.Entity, e.Field, typeinfo.Format(e.Type), e.Key)
}

// CircularDependencyError indicates a chain of prototype components that
// leads back to itself.
type CircularDependencyError struct {
	Chain []string
}

func (e CircularDependencyError) Error() string {
	return "circular prototype dependency detected: " + strings.Join(e.Chain, " -> ")
}

// TypeMismatchError indicates a resolved value that is not assignable to the
// declared field type.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", typeinfo.Format(e.Expected), typeinfo.Format(e.Actual))
}

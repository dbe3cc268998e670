package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/junioryono/ioc/internal/typeinfo"
)

var (
	ErrDescriptorNil  = errors.New("descriptor cannot be nil")
	ErrEmptyName      = errors.New("entity name cannot be empty")
	ErrNotRegistered  = errors.New("entity is not registered")
	ErrNotSingleton   = errors.New("component is not singleton-scoped")
	ErrInstanceExists = errors.New("singleton instance already constructed")
)

var (
	_ error = NameConflictError{}
	_ error = TypeKindMismatchError{}
	_ error = RegistrationError{}
	_ error = KindError{}
	_ error = ScopeError{}
)

// NameConflictError indicates two distinct classes reduce to the same name
// within one kind.
type NameConflictError struct {
	Kind     Kind
	Name     string
	Existing reflect.Type
	Incoming reflect.Type
}

func (e NameConflictError) Error() string {
	return fmt.Sprintf("name conflict: %s %q is already registered by %s, cannot register %s",
		e.Kind, e.Name, qualified(e.Existing), qualified(e.Incoming))
}

// TypeKindMismatchError indicates a class lacks the capability set of the
// kind it is registered under.
type TypeKindMismatchError struct {
	Kind Kind
	Type reflect.Type
}

func (e TypeKindMismatchError) Error() string {
	if !e.Kind.IsValid() {
		return fmt.Sprintf("type kind mismatch: %s does not implement any entity capability", typeinfo.Format(e.Type))
	}
	return fmt.Sprintf("type kind mismatch: %s cannot be registered as %s: missing %s",
		typeinfo.Format(e.Type), e.Kind, e.Kind.Capability())
}

// RegistrationError wraps errors during entity registration.
type RegistrationError struct {
	Kind  Kind
	Name  string
	Type  reflect.Type
	Cause error
}

func (e RegistrationError) Error() string {
	subject := e.Name
	if e.Type != nil {
		subject = typeinfo.Format(e.Type)
	}
	return fmt.Sprintf("failed to register %s %s: %v", e.Kind, subject, e.Cause)
}

func (e RegistrationError) Unwrap() error {
	return e.Cause
}

// KindError indicates an invalid entity kind value.
type KindError struct {
	Value any
}

func (e KindError) Error() string {
	return fmt.Sprintf("invalid entity kind: %v", e.Value)
}

// ScopeError indicates an invalid component scope value.
type ScopeError struct {
	Value any
}

func (e ScopeError) Error() string {
	return fmt.Sprintf("invalid component scope: %v", e.Value)
}

func qualified(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

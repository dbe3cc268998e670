package beans

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/junioryono/ioc/internal/typeinfo"
)

var (
	// ErrCollectionNil is returned when Resolve receives a nil instance.
	ErrCollectionNil = errors.New("bean collection instance cannot be nil")

	// ErrNilBean is the cause of an InvalidBeanError for a factory returning nil.
	ErrNilBean = errors.New("factory returned a nil bean")
)

var (
	_ error = BeanConflictError{}
	_ error = InvalidBeanError{}
	_ error = InvalidFactoryError{}
	_ error = BeanConstructionError{}
	_ error = CyclicBeanDependencyError{}
)

// BeanConflictError indicates two factories producing the same bean name.
type BeanConflictError struct {
	Name     string
	Existing string
	Incoming string
}

func (e BeanConflictError) Error() string {
	return fmt.Sprintf("bean %q produced by %s is already provided by %s", e.Name, e.Incoming, e.Existing)
}

// InvalidBeanError indicates a produced value whose runtime type name differs
// from the bean name derived from the factory's declared result.
type InvalidBeanError struct {
	Collection string
	Factory    string
	Name       string
	Actual     string
}

func (e InvalidBeanError) Error() string {
	return fmt.Sprintf("invalid bean from %s.%s: declared %q but produced %q", e.Collection, e.Factory, e.Name, e.Actual)
}

func (e InvalidBeanError) Unwrap() error {
	if e.Actual == "<nil>" {
		return ErrNilBean
	}
	return nil
}

// InvalidFactoryError indicates a Create method whose signature is not
// func(...) T or func(...) (T, error).
type InvalidFactoryError struct {
	Collection string
	Factory    string
	Type       reflect.Type
}

func (e InvalidFactoryError) Error() string {
	return fmt.Sprintf("invalid factory %s.%s: signature %s must return a bean optionally followed by an error",
		e.Collection, e.Factory, e.Type)
}

// BeanConstructionError indicates a factory that could not be invoked or that
// returned an error.
type BeanConstructionError struct {
	Collection string
	Factory    string
	Type       reflect.Type
	Cause      error
}

func (e BeanConstructionError) Error() string {
	return fmt.Sprintf("failed to construct bean %s from %s.%s: %v",
		typeinfo.Format(e.Type), e.Collection, e.Factory, e.Cause)
}

func (e BeanConstructionError) Unwrap() error {
	return e.Cause
}

// CyclicBeanDependencyError indicates factories whose parameters depend on
// each other.
type CyclicBeanDependencyError struct {
	Collection string
	Factory    string
	Cause      error
}

func (e CyclicBeanDependencyError) Error() string {
	return fmt.Sprintf("cyclic bean dependency at %s.%s: %v", e.Collection, e.Factory, e.Cause)
}

func (e CyclicBeanDependencyError) Unwrap() error {
	return e.Cause
}

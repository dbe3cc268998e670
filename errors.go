package ioc

import (
	"errors"
	"fmt"

	"github.com/junioryono/ioc/internal/beans"
	"github.com/junioryono/ioc/internal/inject"
	"github.com/junioryono/ioc/internal/lifecycle"
	"github.com/junioryono/ioc/internal/properties"
	"github.com/junioryono/ioc/internal/registry"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================

var (
	// Container state errors.
	ErrAlreadyRunning = errors.New("container is already running")
	ErrNotRunning     = errors.New("container is not running")
	ErrClosed         = errors.New("container has been closed")

	// Lookup errors.
	ErrComponentNotFound  = errors.New("component not found")
	ErrBeanNotFound       = errors.New("bean not found")
	ErrPropertiesNotFound = errors.New("properties not found")

	// Class errors.
	ErrConstructorNil = errors.New("constructor cannot be nil")
	ErrClassInvalid   = errors.New("class was not built with ClassOf or StructOf")

	// Errors re-exported from the internal packages.
	ErrPropertiesPathEmpty = properties.ErrPathEmpty
	ErrNilBean             = beans.ErrNilBean
	ErrDependencyNotFound  = inject.ErrNotFound
)

var (
	_ error = BuildError{}
	_ error = LookupError{}
	_ error = ScopeValueError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================
// Every error below is defined next to the package that raises it and
// re-exported here so callers can use errors.As with ioc.X types.

type (
	NameConflictError         = registry.NameConflictError
	TypeKindMismatchError     = registry.TypeKindMismatchError
	RegistrationError         = registry.RegistrationError
	KindError                 = registry.KindError
	ScopeError                = registry.ScopeError
	UnsupportedFormatError    = properties.UnsupportedFormatError
	ParseError                = properties.ParseError
	UnknownKeyError           = properties.UnknownKeyError
	MissingKeyError           = properties.MissingKeyError
	SchemaValidationError     = properties.SchemaValidationError
	BeanConflictError         = beans.BeanConflictError
	InvalidBeanError          = beans.InvalidBeanError
	InvalidFactoryError       = beans.InvalidFactoryError
	BeanConstructionError     = beans.BeanConstructionError
	CyclicBeanDependencyError = beans.CyclicBeanDependencyError
	DependencyResolutionError = inject.DependencyResolutionError
	PropertiesNotLoadedError  = inject.PropertiesNotLoadedError
	CircularDependencyError   = inject.CircularDependencyError
	TypeMismatchError         = inject.TypeMismatchError
	HookError                 = lifecycle.HookError
	NotInjectedError          = lifecycle.NotInjectedError
	TeardownError             = lifecycle.TeardownError
)

// Phase names a bootstrap step of Run.
type Phase string

const (
	PhaseProperties Phase = "properties"
	PhaseSingletons Phase = "singletons"
	PhaseBeans      Phase = "beans"
	PhaseInjection  Phase = "injection"
	PhaseLifecycle  Phase = "lifecycle"
)

// BuildError wraps errors that occur while the container boots.
type BuildError struct {
	Phase   Phase
	Details string
	Cause   error
}

func (e BuildError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("bootstrap failed during %s phase: %v", e.Phase, e.Cause)
	}
	return fmt.Sprintf("bootstrap failed during %s phase: %s: %v", e.Phase, e.Details, e.Cause)
}

func (e BuildError) Unwrap() error {
	return e.Cause
}

// LookupError indicates a failed lookup on a running container.
type LookupError struct {
	Kind  Kind
	Name  string
	Cause error
}

func (e LookupError) Error() string {
	return fmt.Sprintf("lookup of %s %q failed: %v", e.Kind, e.Name, e.Cause)
}

func (e LookupError) Unwrap() error {
	return e.Cause
}

// ScopeValueError indicates a component class reporting an unknown scope.
type ScopeValueError struct {
	Class string
	Scope Scope
}

func (e ScopeValueError) Error() string {
	return fmt.Sprintf("component %s reports invalid scope %d", e.Class, int(e.Scope))
}

func (e ScopeValueError) Unwrap() error {
	return ScopeError{Value: e.Scope}
}

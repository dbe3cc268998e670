package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotTracked is returned for a name that was never tracked.
	ErrNotTracked = errors.New("instance is not tracked")

	// ErrAlreadyTracked is returned when a name is tracked twice.
	ErrAlreadyTracked = errors.New("instance is already tracked")

	// ErrDestroyed is returned when tracking or initializing after Destroy.
	ErrDestroyed = errors.New("lifecycle coordinator is destroyed")
)

var (
	_ error = HookError{}
	_ error = NotInjectedError{}
	_ error = TeardownError{}
)

// HookError indicates a lifecycle hook that returned an error.
type HookError struct {
	Component string
	Hook      Hook
	Cause     error
}

func (e HookError) Error() string {
	return fmt.Sprintf("%s hook failed for %s: %v", e.Hook, e.Component, e.Cause)
}

func (e HookError) Unwrap() error {
	return e.Cause
}

// NotInjectedError indicates Initialize was called while some tracked
// instances were not injected yet.
type NotInjectedError struct {
	Components []string
}

func (e NotInjectedError) Error() string {
	return "cannot initialize before injection completes: " + strings.Join(e.Components, ", ")
}

// TeardownError aggregates every hook failure of a Destroy pass.
type TeardownError struct {
	Errors []error
}

func (e TeardownError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "teardown finished with %d error(s):", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n  • ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e TeardownError) Unwrap() []error {
	return e.Errors
}

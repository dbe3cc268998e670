// Package persistence holds the database handles and model types shared by
// repositories. A handle is configured once during bootstrap, typically from
// a bean factory or an Init hook, and read by repositories afterwards.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"

	pkgerrors "github.com/pkg/errors"
)

// ErrEngineNotConfigured is returned when a handle is read before it is set.
var ErrEngineNotConfigured = errors.New("engine is not configured")

var _ error = EngineNotConfiguredError{}

// EngineNotConfiguredError names the engine that was read before Set.
type EngineNotConfiguredError struct {
	Engine string
}

func (e EngineNotConfiguredError) Error() string {
	return fmt.Sprintf("engine %q is not configured", e.Engine)
}

func (e EngineNotConfiguredError) Unwrap() error {
	return ErrEngineNotConfigured
}

// Engine holds a database handle of type T, such as *sql.DB.
type Engine[T any] struct {
	name string

	mu     sync.RWMutex
	handle T
	set    bool
}

// NewEngine returns an unconfigured engine.
func NewEngine[T any](name string) *Engine[T] {
	return &Engine[T]{name: name}
}

// Name returns the engine name.
func (e *Engine[T]) Name() string {
	return e.name
}

// Set stores the handle, replacing any previous one.
func (e *Engine[T]) Set(handle T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.handle = handle
	e.set = true
}

// Open sets the handle returned by open for uri.
func (e *Engine[T]) Open(uri string, open func(string) (T, error)) error {
	handle, err := open(uri)
	if err != nil {
		return pkgerrors.Wrapf(err, "could not open engine %s", e.name)
	}

	e.Set(handle)
	return nil
}

// Get returns the handle. Before Set it fails with EngineNotConfiguredError.
func (e *Engine[T]) Get() (T, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.set {
		var zero T
		return zero, EngineNotConfiguredError{Engine: e.name}
	}
	return e.handle, nil
}

// MustGet is like Get but panics when the engine is not configured.
func (e *Engine[T]) MustGet() T {
	h, err := e.Get()
	if err != nil {
		panic(err)
	}
	return h
}

// IsConfigured reports whether Set was called.
func (e *Engine[T]) IsConfigured() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.set
}

// Reset clears the handle.
func (e *Engine[T]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.handle = zero
	e.set = false
}

// Do calls fn with the handle. Errors from fn are returned unchanged.
func (e *Engine[T]) Do(ctx context.Context, fn func(context.Context, T) error) error {
	h, err := e.Get()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, h)
}

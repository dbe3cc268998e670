// Package lifecycle runs the initialization and shutdown hooks of the
// container's singletons. Instances are initialized in the order they were
// constructed and destroyed in the reverse order.
package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// State is the lifecycle position of a tracked instance.
type State int

const (
	// Unknown is reported for names that are not tracked.
	Unknown State = iota
	Constructed
	Injected
	Initialized
	Destroying
	Destroyed
)

func (s State) String() string {
	switch s {
	case Constructed:
		return "Constructed"
	case Injected:
		return "Injected"
	case Initialized:
		return "Initialized"
	case Destroying:
		return "Destroying"
	case Destroyed:
		return "Destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type entry struct {
	name     string
	instance any
	state    State
}

// Coordinator tracks singletons in construction order and drives their
// hooks. It is safe for concurrent use. Hooks run without the state lock
// held, so a hook may query State.
type Coordinator struct {
	run         sync.Mutex
	mu          sync.Mutex
	entries     []*entry
	index       map[string]*entry
	initialized bool
	destroyed   bool
	log         *slog.Logger
}

// New creates an empty coordinator.
func New(log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		index: make(map[string]*entry),
		log:   log,
	}
}

// Track records a constructed instance. Call order is construction order.
func (c *Coordinator) Track(name string, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return ErrDestroyed
	}
	if _, ok := c.index[name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyTracked, name)
	}

	e := &entry{name: name, instance: instance, state: Constructed}
	c.entries = append(c.entries, e)
	c.index[name] = e
	return nil
}

// MarkInjected moves name from Constructed to Injected.
func (c *Coordinator) MarkInjected(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotTracked, name)
	}
	if e.state == Constructed {
		e.state = Injected
	}
	return nil
}

// State returns the lifecycle position of name.
func (c *Coordinator) State(name string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.index[name]; ok {
		return e.state
	}
	return Unknown
}

// Names returns the tracked names in construction order.
func (c *Coordinator) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.name
	}
	return names
}

// Initialize runs PreInit, Init and PostInit for every instance in
// construction order. It refuses to start while any instance is still only
// constructed. On the first hook failure the instances initialized so far
// are destroyed in reverse order and the failure is returned as a HookError.
func (c *Coordinator) Initialize(ctx context.Context) error {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return ErrDestroyed
	}
	if c.initialized {
		c.mu.Unlock()
		return nil
	}

	var pending []string
	for _, e := range c.entries {
		if e.state != Injected {
			pending = append(pending, e.name)
		}
	}
	entries := slices.Clone(c.entries)
	c.mu.Unlock()

	if len(pending) > 0 {
		return NotInjectedError{Components: pending}
	}

	for i, e := range entries {
		for _, s := range initSteps(e.instance) {
			if err := s.run(ctx); err != nil {
				c.log.Error("lifecycle hook failed, rolling back",
					"component", e.name,
					"hook", string(s.hook),
					"error", err)

				if rbErr := c.destroy(ctx, entries[:i]); rbErr != nil {
					c.log.Error("rollback finished with errors", "error", rbErr)
				}
				return HookError{Component: e.name, Hook: s.hook, Cause: err}
			}
		}

		c.setState(e, Initialized)
		c.log.Debug("component initialized", "component", e.name)
	}

	c.mu.Lock()
	c.initialized = true
	c.mu.Unlock()
	return nil
}

// Destroy runs PreDestroy, Destroy (or Close) and PostDestroy for every
// instance in reverse construction order. Every instance is attempted and
// failures are aggregated into a TeardownError. Later calls are no-ops.
func (c *Coordinator) Destroy(ctx context.Context) error {
	c.run.Lock()
	defer c.run.Unlock()

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true
	entries := slices.Clone(c.entries)
	c.mu.Unlock()

	return c.destroy(ctx, entries)
}

func (c *Coordinator) destroy(ctx context.Context, entries []*entry) error {
	var errs []error

	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if st := c.stateOf(e); st == Destroying || st == Destroyed {
			continue
		}

		c.setState(e, Destroying)
		for _, s := range destroySteps(e.instance) {
			if err := s.run(ctx); err != nil {
				errs = append(errs, HookError{Component: e.name, Hook: s.hook, Cause: err})
				c.log.Warn("lifecycle hook failed during teardown",
					"component", e.name,
					"hook", string(s.hook),
					"error", err)
			}
		}
		c.setState(e, Destroyed)
		c.log.Debug("component destroyed", "component", e.name)
	}

	if len(errs) > 0 {
		return TeardownError{Errors: errs}
	}
	return nil
}

func (c *Coordinator) setState(e *entry, s State) {
	c.mu.Lock()
	e.state = s
	c.mu.Unlock()
}

func (c *Coordinator) stateOf(e *entry) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return e.state
}

package ioc

import (
	"context"
	"log/slog"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/junioryono/ioc/internal/beans"
	"github.com/junioryono/ioc/internal/inject"
	"github.com/junioryono/ioc/internal/lifecycle"
	"github.com/junioryono/ioc/internal/properties"
	"github.com/junioryono/ioc/internal/registry"
)

// Container is the application context. Classes are registered first, then
// Run boots the container in one pass: properties are loaded, singletons
// and controllers are constructed, bean collections produce their beans,
// every declared field is injected and the lifecycle hooks run.
//
// Registration is not safe for concurrent use. Lookups on a running
// container are.
type Container struct {
	id   string
	log  *slog.Logger
	opts options

	mu       sync.RWMutex
	registry *registry.Registry
	life     *lifecycle.Coordinator
	injector *inject.Injector
	beans    *beans.Resolver

	props      map[string]any
	propsTypes map[reflect.Type]string

	controllers []entity

	running bool
	ready   bool
	closed  bool
}

type entity struct {
	desc     *registry.Descriptor
	instance any
}

// New creates an empty container.
func New(opts ...Option) *Container {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(&o)
		}
	}

	id := uuid.NewString()
	base := o.logger
	if base == nil {
		base = slog.Default()
	}
	log := base.With("container", id)

	c := &Container{
		id:         id,
		log:        log,
		opts:       o,
		registry:   registry.New(),
		life:       lifecycle.New(log),
		props:      make(map[string]any),
		propsTypes: make(map[reflect.Type]string),
	}
	c.injector = inject.New(source{c}, log)
	return c
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id
}

// Config returns a copy of the attached configuration, or nil.
func (c *Container) Config() *Config {
	if c.opts.config == nil {
		return nil
	}
	cp := *c.opts.config
	return &cp
}

// Register adds class under kind. Registering the same class twice is a
// no-op; a different class with the same derived name fails with
// NameConflictError.
func (c *Container) Register(kind Kind, class Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.running {
		return ErrAlreadyRunning
	}

	return c.register(kind, class)
}

func (c *Container) register(kind Kind, class Class) error {
	if !kind.IsValid() {
		return KindError{Value: kind}
	}

	d, err := class.descriptor(kind)
	if err != nil {
		return err
	}

	added, err := c.registry.Register(kind, d)
	if err != nil {
		return err
	}

	if !added {
		c.log.Debug("entity already registered", "kind", kind.String(), "name", d.Name)
		return nil
	}

	if kind == registry.Properties {
		c.propsTypes[d.Type] = d.Key
	}

	c.log.Debug("entity registered",
		"kind", kind.String(),
		"name", d.Name,
		"type", d.Type.String(),
		"dependencies", len(d.Dependencies))
	return nil
}

// Add registers every class under each kind its capability set satisfies.
// A class implementing no capability fails with TypeKindMismatchError.
func (c *Container) Add(classes ...Class) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.running {
		return ErrAlreadyRunning
	}

	for _, class := range classes {
		if class.err != nil {
			return class.err
		}
		if class.desc == nil {
			return ErrClassInvalid
		}

		kinds := class.Kinds()
		if len(kinds) == 0 {
			return TypeKindMismatchError{Kind: Kind(-1), Type: class.Type()}
		}

		for _, kind := range kinds {
			if err := c.register(kind, class); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run boots the container. Phases run strictly in order and the first
// failure stops the boot with a BuildError naming the phase. Run may be
// called once. Init hooks run after the container lock is released, so a
// hook may look up components.
func (c *Container) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.running {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.running = true

	err := c.boot(ctx)
	c.ready = err == nil
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := c.runPhase(ctx, PhaseLifecycle, c.life.Initialize); err != nil {
		c.mu.Lock()
		c.ready = false
		c.mu.Unlock()
		return err
	}

	c.log.Info("container started",
		"components", c.registry.Len(registry.Component),
		"controllers", len(c.controllers),
		"beans", c.beans.Len(),
		"properties", len(c.props))
	return nil
}

func (c *Container) boot(ctx context.Context) error {
	phases := []struct {
		phase Phase
		run   func(context.Context) error
	}{
		{PhaseProperties, c.loadProperties},
		{PhaseSingletons, c.constructSingletons},
		{PhaseBeans, c.resolveBeans},
		{PhaseInjection, c.injectAll},
	}

	for _, p := range phases {
		if err := c.runPhase(ctx, p.phase, p.run); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) runPhase(ctx context.Context, phase Phase, run func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return BuildError{Phase: phase, Details: "context done", Cause: err}
	}

	c.log.Debug("bootstrap phase started", "phase", string(phase))
	if err := run(ctx); err != nil {
		c.log.Error("bootstrap failed", "phase", string(phase), "error", err)
		return BuildError{Phase: phase, Cause: err}
	}
	return nil
}

func (c *Container) loadProperties(context.Context) error {
	descs := c.registry.List(registry.Properties)
	path := c.opts.resolvedPropertiesPath()

	if len(descs) == 0 && path == "" {
		c.log.Debug("no properties registered, document skipped")
		return nil
	}

	schemas := make([]properties.Schema, 0, len(descs))
	for _, d := range descs {
		schemas = append(schemas, properties.Schema{Key: d.Key, Type: d.Type, New: d.Construct})
	}

	loaded, err := properties.NewLoader(path, schemas, c.log).Load()
	if err != nil {
		return err
	}

	c.props = loaded
	return nil
}

func (c *Container) constructSingletons(context.Context) error {
	for _, d := range c.registry.List(registry.Component) {
		if d.Scope != registry.Singleton {
			continue
		}

		instance := d.Construct()
		if err := c.registry.SetInstance(d.Name, instance); err != nil {
			return err
		}
		if err := c.life.Track(d.Name, instance); err != nil {
			return err
		}
		c.log.Debug("singleton constructed", "kind", d.Kind.String(), "name", d.Name)
	}

	for _, d := range c.registry.List(registry.Controller) {
		c.controllers = append(c.controllers, entity{desc: d, instance: d.Construct()})
		c.log.Debug("controller constructed", "kind", d.Kind.String(), "name", d.Name, "prefix", d.Prefix)
	}

	return nil
}

func (c *Container) resolveBeans(context.Context) error {
	resolver, err := beans.New(c.props, c.log)
	if err != nil {
		return err
	}
	c.beans = resolver

	for _, d := range c.registry.List(registry.BeanCollection) {
		instance := d.Construct()

		if err := c.injector.Inject(inject.Target{
			Kind:         d.Kind,
			Name:         d.Name,
			Instance:     instance,
			Dependencies: d.Dependencies,
		}); err != nil {
			return err
		}

		records, err := c.beans.Resolve(beans.Collection{Name: d.Name, Instance: instance})
		if err != nil {
			return err
		}
		c.log.Debug("bean collection resolved", "kind", d.Kind.String(), "name", d.Name, "beans", len(records))
	}

	return nil
}

func (c *Container) injectAll(context.Context) error {
	c.warnPrototypeCycles()

	for _, name := range c.registry.InstanceNames() {
		d, _ := c.registry.Lookup(registry.Component, name)
		instance, _ := c.registry.Instance(name)

		if err := c.injector.Inject(inject.Target{
			Kind:         d.Kind,
			Name:         d.Name,
			Instance:     instance,
			Dependencies: d.Dependencies,
		}); err != nil {
			return err
		}
		if err := c.life.MarkInjected(name); err != nil {
			return err
		}
	}

	for _, ctrl := range c.controllers {
		if err := c.injector.Inject(inject.Target{
			Kind:         ctrl.desc.Kind,
			Name:         ctrl.desc.Name,
			Instance:     ctrl.instance,
			Dependencies: ctrl.desc.Dependencies,
		}); err != nil {
			return err
		}
	}

	return nil
}

// Close runs the destroy hooks of every singleton in reverse construction
// order. It is safe to call more than once.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	err := c.life.Destroy(ctx)
	if err != nil {
		c.log.Error("container closed with errors", "error", err)
		return err
	}

	c.log.Info("container closed")
	return nil
}

// IsRunning reports whether Run succeeded and Close was not called.
func (c *Container) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready && !c.closed
}

// State returns the lifecycle state of the singleton component name.
func (c *Container) State(name string) State {
	return c.life.State(name)
}

// source exposes the container to the injector.
type source struct {
	c *Container
}

func (s source) PropertiesKey(t reflect.Type) (string, bool) {
	key, ok := s.c.propsTypes[t]
	return key, ok
}

func (s source) Properties(key string) (any, bool) {
	v, ok := s.c.props[key]
	return v, ok
}

func (s source) Singleton(name string) (any, bool) {
	return s.c.registry.Instance(name)
}

func (s source) Prototype(name string) (*registry.Descriptor, bool) {
	d, ok := s.c.registry.Lookup(registry.Component, name)
	if !ok || d.Scope != registry.Prototype {
		return nil, false
	}
	return d, true
}

func (s source) Bean(name string) (any, bool) {
	if s.c.beans == nil {
		return nil, false
	}
	return s.c.beans.Bean(name)
}

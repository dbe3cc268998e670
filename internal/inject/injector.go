// Package inject resolves declared dependency fields against the already
// constructed singletons, beans and properties, and assigns them.
package inject

import (
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/typeinfo"
)

// Source is the read side of the container the injector resolves against.
type Source interface {
	// PropertiesKey reports whether t is a Properties type and its key.
	PropertiesKey(t reflect.Type) (string, bool)

	// Properties returns the loaded instance for key.
	Properties(key string) (any, bool)

	// Singleton returns the constructed singleton component name.
	Singleton(name string) (any, bool)

	// Prototype returns the descriptor of the prototype component name.
	Prototype(name string) (*registry.Descriptor, bool)

	// Bean returns the bean recorded under name.
	Bean(name string) (any, bool)
}

// Target is a constructed entity whose declared fields must be resolved.
type Target struct {
	Kind         registry.Kind
	Name         string
	Instance     any
	Dependencies []*registry.Dependency
}

// Injector assigns dependencies to targets. It is single-pass: it never
// constructs a singleton or a bean, it only reads what Source already holds.
type Injector struct {
	source Source
	log    *slog.Logger
	done   map[string]bool
}

// New creates an injector reading from source.
func New(source Source, log *slog.Logger) *Injector {
	if log == nil {
		log = slog.Default()
	}
	return &Injector{
		source: source,
		log:    log,
		done:   make(map[string]bool),
	}
}

// InjectAll injects every target in order and stops at the first failure.
func (i *Injector) InjectAll(targets []Target) error {
	for _, t := range targets {
		if err := i.Inject(t); err != nil {
			return err
		}
	}
	return nil
}

// Inject resolves and assigns the declared fields of target. A target is
// injected at most once; later calls are no-ops.
func (i *Injector) Inject(target Target) error {
	id := target.Kind.String() + "/" + target.Name
	if i.done[id] {
		return nil
	}

	if err := i.inject(target, nil); err != nil {
		return err
	}

	i.done[id] = true
	return nil
}

// Injected reports whether the target kind/name went through Inject.
func (i *Injector) Injected(kind registry.Kind, name string) bool {
	return i.done[kind.String()+"/"+name]
}

// NewPrototype constructs a fresh instance of the prototype d and injects it.
func (i *Injector) NewPrototype(d *registry.Descriptor) (any, error) {
	return i.newPrototype(d, nil)
}

func (i *Injector) newPrototype(d *registry.Descriptor, stack []string) (any, error) {
	if slices.Contains(stack, d.Name) {
		return nil, CircularDependencyError{Chain: append(slices.Clone(stack), d.Name)}
	}

	instance := d.Construct()
	target := Target{Kind: registry.Component, Name: d.Name, Instance: instance, Dependencies: d.Dependencies}
	if err := i.inject(target, append(stack, d.Name)); err != nil {
		return nil, err
	}

	return instance, nil
}

func (i *Injector) inject(target Target, stack []string) error {
	for _, dep := range target.Dependencies {
		if typeinfo.IsPrimitive(dep.Type) {
			i.log.Warn("dependency injection skipped for primitive field",
				"kind", target.Kind.String(),
				"name", target.Name,
				"field", dep.Field,
				"type", typeinfo.Format(dep.Type))
			continue
		}

		value, from, err := i.resolve(target, dep, stack)
		if err != nil {
			return err
		}

		if actual := reflect.TypeOf(value); actual == nil || !actual.AssignableTo(dep.Type) {
			return i.fail(target, dep, TypeMismatchError{Expected: dep.Type, Actual: actual})
		}

		if err := dep.Assign(target.Instance, value); err != nil {
			return i.fail(target, dep, err)
		}

		i.log.Debug("dependency injected",
			"kind", target.Kind.String(),
			"name", target.Name,
			"field", dep.Field,
			"type", typeinfo.Format(dep.Type),
			"from", from)
	}

	return nil
}

func (i *Injector) resolve(target Target, dep *registry.Dependency, stack []string) (any, string, error) {
	if key, ok := i.source.PropertiesKey(dep.Type); ok {
		props, ok := i.source.Properties(key)
		if !ok {
			return nil, "", PropertiesNotLoadedError{
				Kind:   target.Kind,
				Entity: target.Name,
				Field:  dep.Field,
				Key:    key,
				Type:   dep.Type,
			}
		}
		return props, "properties", nil
	}

	name := typeinfo.NameOf(dep.Type)

	if v, ok := i.source.Singleton(name); ok {
		return v, "component", nil
	}

	if d, ok := i.source.Prototype(name); ok {
		v, err := i.newPrototype(d, stack)
		if err != nil {
			return nil, "", i.fail(target, dep, err)
		}
		return v, "prototype", nil
	}

	if v, ok := i.source.Bean(name); ok {
		return v, "bean", nil
	}

	return nil, "", i.fail(target, dep, ErrNotFound)
}

func (i *Injector) fail(target Target, dep *registry.Dependency, cause error) error {
	err := DependencyResolutionError{
		Kind:   target.Kind,
		Entity: target.Name,
		Field:  dep.Field,
		Type:   dep.Type,
		Cause:  cause,
	}
	i.log.Error("dependency injection failed", "error", err.Error())
	return err
}

// String implements fmt.Stringer for debugging.
func (t Target) String() string {
	return fmt.Sprintf("%s %s (%d dependencies)", t.Kind, t.Name, len(t.Dependencies))
}

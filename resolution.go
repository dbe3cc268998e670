package ioc

import (
	"reflect"

	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/typeinfo"
)

// GetComponent returns the component registered under name. Singletons are
// returned as constructed; a prototype lookup constructs and injects a fresh
// instance every time.
func (c *Container) GetComponent(name string) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.checkRunning(); err != nil {
		return nil, err
	}

	if v, ok := c.registry.Instance(name); ok {
		return v, nil
	}

	d, ok := c.registry.Lookup(registry.Component, name)
	if !ok {
		return nil, LookupError{Kind: ComponentKind, Name: name, Cause: ErrComponentNotFound}
	}

	v, err := c.injector.NewPrototype(d)
	if err != nil {
		return nil, LookupError{Kind: ComponentKind, Name: name, Cause: err}
	}
	return v, nil
}

// GetBean returns the bean produced under name.
func (c *Container) GetBean(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.beans == nil {
		return nil, false
	}
	return c.beans.Bean(name)
}

// GetProperties returns the loaded properties instance for key.
func (c *Container) GetProperties(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.props[key]
	return v, ok
}

// Controllers returns the controller instances in registration order.
func (c *Container) Controllers() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]any, len(c.controllers))
	for i, ctrl := range c.controllers {
		out[i] = ctrl.instance
	}
	return out
}

// Components returns the singleton component instances in construction
// order.
func (c *Container) Components() []any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := c.registry.InstanceNames()
	out := make([]any, 0, len(names))
	for _, name := range names {
		v, _ := c.registry.Instance(name)
		out = append(out, v)
	}
	return out
}

func (c *Container) checkRunning() error {
	if c.closed {
		return ErrClosed
	}
	if !c.ready {
		return ErrNotRunning
	}
	return nil
}

// Resolve returns the component whose derived name is the name of T.
func Resolve[T any](c *Container) (T, error) {
	var zero T

	t := reflect.TypeFor[T]()
	v, err := c.GetComponent(typeinfo.NameOf(t))
	if err != nil {
		return zero, err
	}

	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{Expected: t, Actual: reflect.TypeOf(v)}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Bean returns the bean whose name is the derived name of T.
func Bean[T any](c *Container) (T, error) {
	var zero T

	t := reflect.TypeFor[T]()
	name := typeinfo.NameOf(t)
	v, ok := c.GetBean(name)
	if !ok {
		return zero, LookupError{Kind: BeanCollectionKind, Name: name, Cause: ErrBeanNotFound}
	}

	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{Expected: t, Actual: reflect.TypeOf(v)}
	}
	return typed, nil
}

// PropertiesOf returns the loaded instance of the properties class T.
func PropertiesOf[T Properties](c *Container) (T, error) {
	var zero T

	t := reflect.TypeFor[T]()
	c.mu.RLock()
	key, ok := c.propsTypes[t]
	c.mu.RUnlock()
	if !ok {
		return zero, LookupError{Kind: PropertiesKind, Name: typeinfo.NameOf(t), Cause: ErrPropertiesNotFound}
	}

	v, ok := c.GetProperties(key)
	if !ok {
		return zero, LookupError{Kind: PropertiesKind, Name: key, Cause: ErrPropertiesNotFound}
	}

	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{Expected: t, Actual: reflect.TypeOf(v)}
	}
	return typed, nil
}

package ioc

import (
	"reflect"

	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/typeinfo"
)

// Kind classifies a registered entity.
type Kind = registry.Kind

const (
	ComponentKind      = registry.Component
	ControllerKind     = registry.Controller
	BeanCollectionKind = registry.BeanCollection
	PropertiesKind     = registry.Properties
)

// Scope is the instantiation policy of a component.
type Scope = registry.Scope

const (
	Singleton = registry.Singleton
	Prototype = registry.Prototype
)

// Component is implemented by classes registered as components.
type Component interface {
	ComponentScope() Scope
}

// Controller is implemented by classes registered as controllers. The prefix
// is the route prefix used by HTTP adapters.
type Controller interface {
	ControllerPrefix() string
}

// BeanCollection is implemented by classes whose Create methods produce
// beans. An empty name falls back to the derived type name.
type BeanCollection interface {
	BeanCollectionName() string
}

// Properties is implemented by pointer-to-struct schemas bound to a top-level
// key of the properties document.
type Properties interface {
	PropertiesKey() string
}

// Dependent declares the injectable fields of a class. It is called once,
// on a freshly allocated value, when the class is built.
type Dependent interface {
	Dependencies() []Dependency
}

// Embeddable capability bases. A prototype whose only field is
// BasePrototype is zero-size, and Go may hand out the same address for
// every instance, so pointers to such prototypes can compare equal. Give a
// prototype at least one real field when identity matters.
type (
	BaseComponent      struct{}
	BasePrototype      struct{}
	BaseController     struct{}
	BaseBeanCollection struct{}
)

func (BaseComponent) ComponentScope() Scope           { return Singleton }
func (BasePrototype) ComponentScope() Scope           { return Prototype }
func (BaseController) ControllerPrefix() string       { return "" }
func (BaseBeanCollection) BeanCollectionName() string { return "" }

// Dependency is a declared injectable field.
type Dependency = registry.Dependency

// Field declares the field name of S with type D. The ref function returns
// the address of the field on a given instance.
//
//	func (s *UserService) Dependencies() []ioc.Dependency {
//	    return []ioc.Dependency{
//	        ioc.Field("Repo", func(s *UserService) **UserRepository { return &s.Repo }),
//	    }
//	}
func Field[S any, D any](name string, ref func(S) *D) Dependency {
	return Dependency{
		Field: name,
		Type:  reflect.TypeFor[D](),
		Assign: func(target, value any) error {
			s, ok := target.(S)
			if !ok {
				return TypeMismatchError{Expected: reflect.TypeFor[S](), Actual: reflect.TypeOf(target)}
			}
			d, ok := value.(D)
			if !ok {
				return TypeMismatchError{Expected: reflect.TypeFor[D](), Actual: reflect.TypeOf(value)}
			}
			*ref(s) = d
			return nil
		},
	}
}

// Class is a registrable entity class: a no-argument constructor plus the
// capability set and declared dependencies of its result type.
type Class struct {
	desc       *registry.Descriptor
	collection string
	err        error
}

// ClassOf describes the class constructed by construct. The class identity
// is T; its derived name is the name of T with pointers stripped.
func ClassOf[T any](construct func() T) Class {
	t := reflect.TypeFor[T]()
	if construct == nil {
		return Class{err: RegistrationError{Type: t, Cause: ErrConstructorNil}}
	}

	d := &registry.Descriptor{
		Name:      typeinfo.NameOf(t),
		Type:      t,
		Construct: func() any { return construct() },
	}

	sample := sampleOf(t)

	if c, ok := sample.(Component); ok {
		d.Capabilities = d.Capabilities.With(registry.Component)
		d.Scope = c.ComponentScope()
		if !d.Scope.IsValid() {
			return Class{err: ScopeValueError{Class: d.Name, Scope: d.Scope}}
		}
	}

	if c, ok := sample.(Controller); ok {
		d.Capabilities = d.Capabilities.With(registry.Controller)
		d.Prefix = c.ControllerPrefix()
	}

	var collection string
	if c, ok := sample.(BeanCollection); ok {
		d.Capabilities = d.Capabilities.With(registry.BeanCollection)
		collection = c.BeanCollectionName()
	}

	if p, ok := sample.(Properties); ok && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		d.Capabilities = d.Capabilities.With(registry.Properties)
		d.Key = p.PropertiesKey()
	}

	if dep, ok := sample.(Dependent); ok {
		for _, field := range dep.Dependencies() {
			d.Dependencies = append(d.Dependencies, &field)
		}
	}

	return Class{desc: d, collection: collection}
}

// StructOf describes the class *T constructed with new(T).
func StructOf[T any]() Class {
	return ClassOf(func() *T { return new(T) })
}

// Name returns the derived name of the class.
func (c Class) Name() string {
	if c.desc == nil {
		return ""
	}
	return c.desc.Name
}

// Type returns the class identity.
func (c Class) Type() reflect.Type {
	if c.desc == nil {
		return nil
	}
	return c.desc.Type
}

// Kinds returns every kind the class can be registered as.
func (c Class) Kinds() []Kind {
	if c.desc == nil {
		return nil
	}
	return c.desc.Capabilities.Kinds()
}

// descriptor returns the descriptor for kind. Properties are named by their
// key and bean collections by their collection name.
func (c Class) descriptor(kind Kind) (*registry.Descriptor, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.desc == nil {
		return nil, ErrClassInvalid
	}

	d := c.desc.Clone(kind)
	switch kind {
	case registry.Properties:
		d.Name = d.Key
	case registry.BeanCollection:
		if c.collection != "" {
			d.Name = c.collection
		}
	}
	return d, nil
}

// sampleOf returns a freshly allocated value of t, so methods declared on the
// pointee can be called without running the class constructor.
func sampleOf(t reflect.Type) any {
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Elem().Interface()
}

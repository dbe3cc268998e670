package registry

import (
	"reflect"
	"slices"
)

// Descriptor describes a registrable entity class. The dependency list is
// computed once when the class is described and never re-analyzed.
type Descriptor struct {
	// Kind is the kind the descriptor is registered under.
	Kind Kind

	// Name is derived from the class identity, or the key for Properties.
	Name string

	// Type is the class identity: the result type of Construct.
	Type reflect.Type

	// Capabilities is every kind the class type is able to serve.
	Capabilities KindSet

	// Scope applies to Components.
	Scope Scope

	// Key applies to Properties.
	Key string

	// Prefix applies to Controllers.
	Prefix string

	// Construct is the no-argument construction step.
	Construct func() any

	// Dependencies are the declared injectable fields in declaration order.
	Dependencies []*Dependency
}

// Dependency represents a single declared dependency field.
type Dependency struct {
	// Field is the declared field name, used in diagnostics.
	Field string

	// Type is the required type of the field.
	Type reflect.Type

	// Assign stores value into the field of target.
	Assign func(target, value any) error
}

// Clone returns a copy of d registered under kind.
func (d *Descriptor) Clone(kind Kind) *Descriptor {
	cp := *d
	cp.Kind = kind
	cp.Dependencies = slices.Clone(d.Dependencies)
	return &cp
}

// Registry holds one name->descriptor mapping per kind plus the singleton
// component instances. It is mutated only during bootstrap and is not safe
// for concurrent writers.
type Registry struct {
	entries map[Kind]map[string]*Descriptor
	order   map[Kind][]string

	instances     map[string]any
	instanceOrder []string
}

// New creates an empty registry.
func New() *Registry {
	r := &Registry{
		entries:   make(map[Kind]map[string]*Descriptor, len(AllKinds)),
		order:     make(map[Kind][]string, len(AllKinds)),
		instances: make(map[string]any),
	}
	for _, k := range AllKinds {
		r.entries[k] = make(map[string]*Descriptor)
	}
	return r
}

// Register adds d under kind. It reports whether the descriptor was added:
// registering the same type again under the same name is a no-op that keeps
// the first registration. A different type reducing to the same name fails
// with NameConflictError.
func (r *Registry) Register(kind Kind, d *Descriptor) (bool, error) {
	if !kind.IsValid() {
		return false, KindError{Value: kind}
	}

	if d == nil || d.Type == nil {
		return false, ErrDescriptorNil
	}

	if !d.Capabilities.Has(kind) {
		return false, TypeKindMismatchError{Kind: kind, Type: d.Type}
	}

	if d.Name == "" {
		return false, RegistrationError{Kind: kind, Type: d.Type, Cause: ErrEmptyName}
	}

	if existing, ok := r.entries[kind][d.Name]; ok {
		if existing.Type == d.Type {
			return false, nil
		}
		return false, NameConflictError{
			Kind:     kind,
			Name:     d.Name,
			Existing: existing.Type,
			Incoming: d.Type,
		}
	}

	entry := d.Clone(kind)
	r.entries[kind][d.Name] = entry
	r.order[kind] = append(r.order[kind], d.Name)
	return true, nil
}

// Lookup returns the descriptor registered under kind and name.
func (r *Registry) Lookup(kind Kind, name string) (*Descriptor, bool) {
	d, ok := r.entries[kind][name]
	return d, ok
}

// List returns the descriptors of kind in registration order.
func (r *Registry) List(kind Kind) []*Descriptor {
	names := r.order[kind]
	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, r.entries[kind][name])
	}
	return out
}

// Names returns the registered names of kind in registration order.
func (r *Registry) Names(kind Kind) []string {
	return slices.Clone(r.order[kind])
}

// Len returns the number of descriptors registered under kind.
func (r *Registry) Len(kind Kind) int {
	return len(r.order[kind])
}

// SetInstance records the singleton instance of the component name.
func (r *Registry) SetInstance(name string, instance any) error {
	d, ok := r.entries[Component][name]
	if !ok {
		return RegistrationError{Kind: Component, Name: name, Cause: ErrNotRegistered}
	}

	if d.Scope != Singleton {
		return RegistrationError{Kind: Component, Name: name, Type: d.Type, Cause: ErrNotSingleton}
	}

	if _, exists := r.instances[name]; exists {
		return RegistrationError{Kind: Component, Name: name, Type: d.Type, Cause: ErrInstanceExists}
	}

	r.instances[name] = instance
	r.instanceOrder = append(r.instanceOrder, name)
	return nil
}

// Instance returns the singleton instance of the component name.
func (r *Registry) Instance(name string) (any, bool) {
	v, ok := r.instances[name]
	return v, ok
}

// InstanceNames returns singleton names in construction order.
func (r *Registry) InstanceNames() []string {
	return slices.Clone(r.instanceOrder)
}

// Package registry holds the entity registry: one name->descriptor mapping
// per entity kind, and the singleton component instances.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the stable entity-kind tag.
type Kind int

const (
	// Component is a scoped class with lifecycle hooks.
	Component Kind = iota

	// Controller is a request-handling class consumed by the HTTP layer.
	Controller

	// BeanCollection is a class exposing bean factory methods.
	BeanCollection

	// Properties is a typed configuration schema keyed by a string.
	Properties
)

// AllKinds lists every kind in routing order.
var AllKinds = []Kind{Component, Controller, BeanCollection, Properties}

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case Component:
		return "Component"
	case Controller:
		return "Controller"
	case BeanCollection:
		return "BeanCollection"
	case Properties:
		return "Properties"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// IsValid checks if the kind is one of the four entity kinds.
func (k Kind) IsValid() bool {
	return k >= Component && k <= Properties
}

// Capability names the method set a class must expose to be registered as k.
func (k Kind) Capability() string {
	switch k {
	case Component:
		return "ComponentScope() Scope"
	case Controller:
		return "ControllerPrefix() string"
	case BeanCollection:
		return "BeanCollectionName() string"
	case Properties:
		return "PropertiesKey() string on a pointer to struct"
	default:
		return "unknown capability"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, candidate := range AllKinds {
		if strings.EqualFold(candidate.String(), string(text)) {
			*k = candidate
			return nil
		}
	}
	return KindError{Value: string(text)}
}

// KindSet is a set of kinds a class type satisfies.
type KindSet uint8

// NewKindSet returns a set holding kinds.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		s = s.With(k)
	}
	return s
}

// With returns s with k added.
func (s KindSet) With(k Kind) KindSet {
	if !k.IsValid() {
		return s
	}
	return s | 1<<uint(k)
}

// Has reports whether k is in s.
func (s KindSet) Has(k Kind) bool {
	return k.IsValid() && s&(1<<uint(k)) != 0
}

// Kinds returns the members of s in routing order.
func (s KindSet) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Scope is the instantiation policy of a Component.
type Scope int

const (
	// Singleton components are constructed once per container lifetime.
	Singleton Scope = iota

	// Prototype components are constructed on every lookup.
	Prototype
)

// String returns the string representation of the Scope.
func (s Scope) String() string {
	switch s {
	case Singleton:
		return "Singleton"
	case Prototype:
		return "Prototype"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// IsValid checks if the scope is valid.
func (s Scope) IsValid() bool {
	return s >= Singleton && s <= Prototype
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Singleton", "singleton":
		*s = Singleton
	case "Prototype", "prototype":
		*s = Prototype
	default:
		return ScopeError{Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Scope) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scope) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

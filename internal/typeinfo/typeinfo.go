// Package typeinfo caches the reflection facts the container needs about a
// type: its derived entity name, its display name and whether it is a scalar.
package typeinfo

import (
	"reflect"
	"sync"
)

// Info holds pre-computed reflection information about a type.
type Info struct {
	Type reflect.Type

	// Name is the derived entity name: the type name with every pointer
	// indirection stripped. Unnamed types fall back to their String form.
	Name string

	// Display is the short form used in error messages, e.g. "*UserService".
	Display string

	// IsPrimitive reports a scalar kind (bool, numeric, complex or string).
	IsPrimitive bool

	IsPointer   bool
	IsInterface bool
	IsStruct    bool
}

var cache sync.Map // map[reflect.Type]*Info

// Of returns cached type information or creates it if not present.
func Of(t reflect.Type) *Info {
	if t == nil {
		return &Info{Name: "<nil>", Display: "<nil>"}
	}

	if cached, ok := cache.Load(t); ok {
		return cached.(*Info)
	}

	actual, _ := cache.LoadOrStore(t, create(t))
	return actual.(*Info)
}

// NameOf returns the derived entity name of t.
func NameOf(t reflect.Type) string {
	return Of(t).Name
}

// Format returns the display form of t.
func Format(t reflect.Type) string {
	return Of(t).Display
}

// IsPrimitive reports whether t is a scalar type that is never injected.
func IsPrimitive(t reflect.Type) bool {
	return t != nil && Of(t).IsPrimitive
}

// NameOfValue returns the derived entity name of the dynamic type of v, or
// "<nil>" for a nil value.
func NameOfValue(v any) string {
	return NameOf(reflect.TypeOf(v))
}

func create(t reflect.Type) *Info {
	info := &Info{
		Type:        t,
		Name:        deriveName(t),
		Display:     format(t),
		IsPointer:   t.Kind() == reflect.Pointer,
		IsInterface: t.Kind() == reflect.Interface,
		IsStruct:    t.Kind() == reflect.Struct,
	}

	switch t.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128, reflect.String:
		info.IsPrimitive = true
	}

	return info
}

func deriveName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func format(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}

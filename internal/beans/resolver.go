// Package beans produces the beans declared by bean collections. Every
// exported Create method of a collection is a factory whose parameters are
// bound by type to loaded properties and to beans produced earlier.
package beans

import (
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"strings"

	"go.uber.org/dig"

	"github.com/junioryono/ioc/internal/typeinfo"
)

// FactoryPrefix marks a collection method as a bean factory.
const FactoryPrefix = "Create"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Collection is a constructed and injected bean collection.
type Collection struct {
	Name     string
	Instance any
}

// Record describes one produced bean.
type Record struct {
	Name       string
	Collection string
	Factory    string
	Type       reflect.Type
	Value      any

	// Inputs are the factory parameter types.
	Inputs []reflect.Type
}

// Resolver owns the dig container factories are provided to and the flat
// bean map shared by every collection.
type Resolver struct {
	container *dig.Container
	log       *slog.Logger

	beans    map[string]*Record
	order    []string
	declared map[string]string
}

type factory struct {
	method string
	fn     reflect.Value
	result reflect.Type
	inputs []reflect.Type
	name   string
}

// New creates a resolver and provides every loaded properties instance to it
// as both *T and T.
func New(properties map[string]any, log *slog.Logger) (*Resolver, error) {
	if log == nil {
		log = slog.Default()
	}

	r := &Resolver{
		container: dig.New(),
		log:       log,
		beans:     make(map[string]*Record),
		declared:  make(map[string]string),
	}

	for _, key := range slices.Sorted(maps.Keys(properties)) {
		if err := r.provideProperties(key, properties[key]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func (r *Resolver) provideProperties(key string, instance any) error {
	if instance == nil {
		return nil
	}

	v := reflect.ValueOf(instance)
	t := v.Type()

	if err := r.container.Provide(constant(t, v)); err != nil {
		return fmt.Errorf("failed to provide properties %q: %w", key, err)
	}

	if t.Kind() == reflect.Pointer {
		if err := r.container.Provide(constant(t.Elem(), v.Elem())); err != nil {
			return fmt.Errorf("failed to provide properties %q: %w", key, err)
		}
	}

	r.declared[typeinfo.NameOf(t)] = "properties " + key
	r.log.Debug("properties provided to bean factories", "key", key, "type", typeinfo.Format(t))
	return nil
}

// Resolve produces every bean of c. Factories are provided before any of
// them is invoked, so a factory may take another bean of the same
// collection as a parameter.
func (r *Resolver) Resolve(c Collection) ([]Record, error) {
	if c.Instance == nil {
		return nil, ErrCollectionNil
	}

	factories, err := r.factories(c)
	if err != nil {
		return nil, err
	}

	for _, f := range factories {
		if err := r.container.Provide(f.fn.Interface()); err != nil {
			if dig.IsCycleDetected(err) {
				return nil, CyclicBeanDependencyError{Collection: c.Name, Factory: f.method, Cause: err}
			}
			return nil, BeanConstructionError{Collection: c.Name, Factory: f.method, Type: f.result, Cause: dig.RootCause(err)}
		}
		r.declared[f.name] = c.Name + "." + f.method
	}

	records := make([]Record, 0, len(factories))
	for _, f := range factories {
		value, err := r.invoke(f.result)
		if err != nil {
			if dig.IsCycleDetected(err) {
				return nil, CyclicBeanDependencyError{Collection: c.Name, Factory: f.method, Cause: err}
			}
			return nil, BeanConstructionError{Collection: c.Name, Factory: f.method, Type: f.result, Cause: dig.RootCause(err)}
		}

		actual := typeinfo.NameOfValue(value)
		if isNilPointer(value) {
			actual = "<nil>"
		}
		if actual != f.name {
			return nil, InvalidBeanError{Collection: c.Name, Factory: f.method, Name: f.name, Actual: actual}
		}

		record := &Record{Name: f.name, Collection: c.Name, Factory: f.method, Type: f.result, Value: value, Inputs: f.inputs}
		r.beans[f.name] = record
		r.order = append(r.order, f.name)
		records = append(records, *record)

		r.log.Debug("bean produced",
			"name", f.name,
			"collection", c.Name,
			"factory", f.method,
			"type", typeinfo.Format(f.result))
	}

	return records, nil
}

// factories lists and validates the Create methods of c in method order.
func (r *Resolver) factories(c Collection) ([]factory, error) {
	v := reflect.ValueOf(c.Instance)
	t := v.Type()

	var out []factory
	seen := make(map[string]string)

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !strings.HasPrefix(m.Name, FactoryPrefix) {
			continue
		}

		fn := v.Method(i)
		ft := fn.Type()
		if !validSignature(ft) {
			return nil, InvalidFactoryError{Collection: c.Name, Factory: m.Name, Type: ft}
		}

		result := ft.Out(0)
		name := typeinfo.NameOf(result)
		incoming := c.Name + "." + m.Name

		if existing, ok := r.declared[name]; ok {
			return nil, BeanConflictError{Name: name, Existing: existing, Incoming: incoming}
		}
		if existing, ok := seen[name]; ok {
			return nil, BeanConflictError{Name: name, Existing: existing, Incoming: incoming}
		}
		seen[name] = incoming

		inputs := make([]reflect.Type, ft.NumIn())
		for j := range inputs {
			inputs[j] = ft.In(j)
		}

		out = append(out, factory{method: m.Name, fn: fn, result: result, inputs: inputs, name: name})
	}

	return out, nil
}

func (r *Resolver) invoke(t reflect.Type) (any, error) {
	var result any
	fn := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{t}, []reflect.Type{errorType}, false),
		func(args []reflect.Value) []reflect.Value {
			if args[0].IsValid() && (args[0].Kind() != reflect.Interface || !args[0].IsNil()) {
				result = args[0].Interface()
			}
			return []reflect.Value{reflect.Zero(errorType)}
		},
	)

	if err := r.container.Invoke(fn.Interface()); err != nil {
		return nil, err
	}
	return result, nil
}

// Bean returns the bean recorded under name.
func (r *Resolver) Bean(name string) (any, bool) {
	rec, ok := r.beans[name]
	if !ok {
		return nil, false
	}
	return rec.Value, true
}

// Record returns the production record of name.
func (r *Resolver) Record(name string) (Record, bool) {
	rec, ok := r.beans[name]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Names returns the produced bean names in production order.
func (r *Resolver) Names() []string {
	return slices.Clone(r.order)
}

// Len returns the number of produced beans.
func (r *Resolver) Len() int {
	return len(r.order)
}

func validSignature(ft reflect.Type) bool {
	if ft.IsVariadic() {
		return false
	}
	switch ft.NumOut() {
	case 1:
		return ft.Out(0) != errorType
	case 2:
		return ft.Out(0) != errorType && ft.Out(1) == errorType
	default:
		return false
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// constant builds func() t returning v, for providing a ready value to dig.
func constant(t reflect.Type, v reflect.Value) any {
	return reflect.MakeFunc(
		reflect.FuncOf(nil, []reflect.Type{t}, false),
		func([]reflect.Value) []reflect.Value { return []reflect.Value{v} },
	).Interface()
}

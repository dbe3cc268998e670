// Package properties loads a structured configuration document and validates
// every top-level key against the typed schema registered under it.
package properties

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"
)

// Schema is a typed properties class registered under Key. New returns a
// fresh pointer to struct populated with the schema defaults.
type Schema struct {
	Key  string
	Type reflect.Type
	New  func() any
}

// Validator is implemented by schemas with rules beyond field types.
type Validator interface {
	Validate() error
}

// Loader validates a properties document against a fixed set of schemas.
type Loader struct {
	path    string
	schemas map[string]Schema
	log     *slog.Logger
}

// NewLoader creates a loader for the document at path.
func NewLoader(path string, schemas []Schema, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}

	l := &Loader{
		path:    path,
		schemas: make(map[string]Schema, len(schemas)),
		log:     log,
	}
	for _, s := range schemas {
		l.schemas[s.Key] = s
	}
	return l
}

// Load is a shorthand for NewLoader(path, schemas, nil).Load().
func Load(path string, schemas []Schema) (map[string]any, error) {
	return NewLoader(path, schemas, nil).Load()
}

// Load parses the document and produces one validated instance per schema
// key. Document keys are processed in sorted order so the first reported
// failure is stable.
func (l *Loader) Load() (map[string]any, error) {
	doc, size, err := read(l.path)
	if err != nil {
		return nil, err
	}

	l.log.Debug("properties document read",
		"path", l.path,
		"size", humanize.Bytes(uint64(size)),
		"keys", len(doc))

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	loaded := make(map[string]any, len(l.schemas))
	for _, key := range keys {
		schema, ok := l.schemas[key]
		if !ok {
			return nil, UnknownKeyError{Key: key, Known: l.knownKeys()}
		}

		instance, err := decode(schema, doc[key])
		if err != nil {
			return nil, err
		}

		loaded[key] = instance
		l.log.Debug("properties loaded", "key", key, "schema", schema.Type.String())
	}

	for _, key := range l.knownKeys() {
		if _, ok := loaded[key]; !ok {
			return nil, MissingKeyError{Key: key, Schema: l.schemas[key].Type}
		}
	}

	return loaded, nil
}

func (l *Loader) knownKeys() []string {
	known := make([]string, 0, len(l.schemas))
	for k := range l.schemas {
		known = append(known, k)
	}
	slices.Sort(known)
	return known
}

// decode validates value against schema and returns the populated instance.
func decode(schema Schema, value any) (any, error) {
	instance := schema.New()
	rv := reflect.ValueOf(instance)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("properties %q: %w", schema.Key, ErrSchemaInvalid)
	}

	fail := func(fields ...string) error {
		return SchemaValidationError{Key: schema.Key, Schema: schema.Type, Fields: fields}
	}

	raw, ok := value.(map[string]any)
	if !ok {
		return nil, fail(fmt.Sprintf("expected an object, got %s", describe(value)))
	}

	var problems []string
	problems = append(problems, missingFields(rv.Elem().Type(), raw)...)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: instance,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			strictNumberHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		ZeroFields: false,
	})
	if err != nil {
		return nil, fmt.Errorf("properties %q: %w", schema.Key, err)
	}

	if err := decoder.Decode(raw); err != nil {
		var merr *mapstructure.Error
		if errors.As(err, &merr) {
			problems = append(problems, merr.Errors...)
		} else {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) == 0 {
		if v, ok := instance.(Validator); ok {
			if err := v.Validate(); err != nil {
				problems = append(problems, err.Error())
			}
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return nil, fail(problems...)
	}

	return instance, nil
}

// strictNumberHook rejects numbers that an integer or string field could
// only hold after truncation or reinterpretation. Accepted json.Number
// values leave as int64, uint64 or float64 so the string based hooks that
// follow never see them.
func strictNumberHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	switch n := data.(type) {
	case json.Number:
		switch kind := to.Kind(); {
		case to == reflect.TypeFor[json.Number](), kind == reflect.Interface:
			return n, nil
		case kind == reflect.String:
			return nil, fmt.Errorf("expected a string, got number %s", n)
		case isInt(kind):
			i, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("%s is not an integer", n)
			}
			return i, nil
		case isUint(kind):
			u, err := strconv.ParseUint(string(n), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%s is not an unsigned integer", n)
			}
			return u, nil
		default:
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("%s is not a number", n)
			}
			return f, nil
		}
	case float64:
		if (isInt(to.Kind()) || isUint(to.Kind())) && n != math.Trunc(n) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
	}
	return data, nil
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

// missingFields reports required fields absent from raw, descending into
// nested struct sections given as objects. Pointer fields and fields
// tagged optional:"true" are not required.
func missingFields(t reflect.Type, raw map[string]any) []string {
	return missingFieldsAt("", t, raw)
}

func missingFieldsAt(prefix string, t reflect.Type, raw map[string]any) []string {
	var missing []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous || f.Type.Kind() == reflect.Pointer {
			continue
		}
		if f.Tag.Get("optional") == "true" {
			continue
		}

		name, skip := fieldKey(f)
		if skip {
			continue
		}

		value, ok := lookup(raw, name)
		if !ok {
			missing = append(missing, fmt.Sprintf("'%s%s' is required", prefix, name))
			continue
		}

		if nested, ok := value.(map[string]any); ok && f.Type.Kind() == reflect.Struct {
			missing = append(missing, missingFieldsAt(prefix+name+".", f.Type, nested)...)
		}
	}
	return missing
}

func fieldKey(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("mapstructure")
	name, opts, _ := strings.Cut(tag, ",")
	if name == "-" || strings.Contains(opts, "squash") || strings.Contains(opts, "remain") {
		return "", true
	}
	if name == "" {
		name = f.Name
	}
	return name, false
}

// lookup matches name case-insensitively, as mapstructure does.
func lookup(raw map[string]any, name string) (any, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}

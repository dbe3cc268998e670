package persistence

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/junioryono/ioc/internal/typeinfo"
)

// Tabler is implemented by models that name their table.
type Tabler interface {
	TableName() string
}

var _ error = ModelConflictError{}

// ModelConflictError indicates two model types use the same table name.
type ModelConflictError struct {
	Table    string
	Existing reflect.Type
	Incoming reflect.Type
}

func (e ModelConflictError) Error() string {
	return fmt.Sprintf("model conflict: table %q is already mapped to %s, cannot map %s",
		e.Table, typeinfo.Format(e.Existing), typeinfo.Format(e.Incoming))
}

// Models maps table names to model types. It is independent of the
// container graph.
type Models struct {
	mu     sync.RWMutex
	tables map[string]reflect.Type
}

// NewModels returns an empty registry.
func NewModels() *Models {
	return &Models{tables: make(map[string]reflect.Type)}
}

// Register adds each model under its table name: TableName when the model
// implements Tabler, otherwise the type name with pointers stripped.
// Registering the same type twice is a no-op.
func (m *Models) Register(models ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, model := range models {
		t := reflect.TypeOf(model)
		table := TableOf(model)

		if existing, ok := m.tables[table]; ok {
			if existing == t {
				continue
			}
			return ModelConflictError{Table: table, Existing: existing, Incoming: t}
		}
		m.tables[table] = t
	}
	return nil
}

// Lookup returns the type registered for table.
func (m *Models) Lookup(table string) (reflect.Type, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	return t, ok
}

// Tables returns the registered table names in sorted order.
func (m *Models) Tables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.tables))
	for table := range m.tables {
		out = append(out, table)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of registered models.
func (m *Models) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// TableOf returns the table name of model.
func TableOf(model any) string {
	if t, ok := model.(Tabler); ok {
		return t.TableName()
	}
	return typeinfo.NameOfValue(model)
}

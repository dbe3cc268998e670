package beans_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/ioc/internal/beans"
)

type DBProperties struct {
	Host string
	Port int
}

type Logger struct{ Prefix string }

type Database struct {
	DSN    string
	Logger *Logger
}

type Cache struct{ Size int }

type infraBeans struct{ prefix string }

func (c *infraBeans) CreateLogger() *Logger { return &Logger{Prefix: c.prefix} }

func (c *infraBeans) CreateDatabase(log *Logger, props *DBProperties) (*Database, error) {
	return &Database{DSN: props.Host, Logger: log}, nil
}

func (c *infraBeans) Helper() string { return "not a factory" }

type cacheBeans struct{}

func (cacheBeans) CreateCache(props DBProperties, db *Database) *Cache {
	return &Cache{Size: props.Port}
}

func newResolver(t *testing.T) *beans.Resolver {
	t.Helper()
	r, err := beans.New(map[string]any{"db": &DBProperties{Host: "localhost", Port: 5432}}, nil)
	require.NoError(t, err)
	return r
}

func TestResolver_Resolve(t *testing.T) {
	r := newResolver(t)

	records, err := r.Resolve(beans.Collection{Name: "infraBeans", Instance: &infraBeans{prefix: "app"}})
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Database", records[0].Name)
	assert.Equal(t, "CreateDatabase", records[0].Factory)
	assert.Equal(t, "Logger", records[1].Name)

	logger, ok := r.Bean("Logger")
	require.True(t, ok)
	db, ok := r.Bean("Database")
	require.True(t, ok)

	assert.Same(t, logger, db.(*Database).Logger, "beans are produced once and shared")
	assert.Equal(t, "localhost", db.(*Database).DSN)
	assert.Equal(t, "app", logger.(*Logger).Prefix)

	_, ok = r.Bean("Helper")
	assert.False(t, ok)

	records, err = r.Resolve(beans.Collection{Name: "cacheBeans", Instance: cacheBeans{}})
	require.NoError(t, err)
	require.Len(t, records, 1)

	cache, _ := r.Bean("Cache")
	assert.Equal(t, 5432, cache.(*Cache).Size, "properties bind by value too")

	assert.Equal(t, []string{"Database", "Logger", "Cache"}, r.Names())
	assert.Equal(t, 3, r.Len())

	rec, ok := r.Record("Cache")
	require.True(t, ok)
	assert.Equal(t, "cacheBeans", rec.Collection)
}

type Widget interface{ Spin() }

type Gadget struct{}

func (*Gadget) Spin() {}

type wrongTypeBeans struct{}

func (wrongTypeBeans) CreateWidget() Widget { return &Gadget{} }

type nilBeans struct{}

func (nilBeans) CreateLogger() *Logger { return nil }

type otherLoggerBeans struct{}

func (otherLoggerBeans) CreateLogger() Logger { return Logger{} }

type A struct{}
type B struct{}

type cyclicBeans struct{}

func (cyclicBeans) CreateA(*B) *A { return &A{} }
func (cyclicBeans) CreateB(*A) *B { return &B{} }

type Missing struct{}

type unboundBeans struct{}

func (unboundBeans) CreateA(*Missing) *A { return &A{} }

var errBoom = errors.New("boom")

type failingBeans struct{}

func (failingBeans) CreateA() (*A, error) { return nil, errBoom }

type noResultBeans struct{}

func (noResultBeans) CreateNothing() {}

type twoResultBeans struct{}

func (twoResultBeans) CreatePair() (*A, *B) { return nil, nil }

type errorOnlyBeans struct{}

func (errorOnlyBeans) CreateErr() error { return nil }

type propertiesBeans struct{}

func (propertiesBeans) CreateDBProperties() *DBProperties { return &DBProperties{} }

func TestResolver_Failures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *beans.Resolver)
		coll   beans.Collection
		assert func(t *testing.T, err error)
	}{
		{
			name: "runtime type differs from declared result",
			coll: beans.Collection{Name: "wrongTypeBeans", Instance: wrongTypeBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.InvalidBeanError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "Widget", target.Name)
				assert.Equal(t, "Gadget", target.Actual)
			},
		},
		{
			name: "nil bean",
			coll: beans.Collection{Name: "nilBeans", Instance: nilBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.InvalidBeanError
				require.ErrorAs(t, err, &target)
				assert.ErrorIs(t, err, beans.ErrNilBean)
			},
		},
		{
			name: "same bean name from another collection",
			setup: func(r *beans.Resolver) {
				_, err := r.Resolve(beans.Collection{Name: "infraBeans", Instance: &infraBeans{}})
				if err != nil {
					panic(err)
				}
			},
			coll: beans.Collection{Name: "otherLoggerBeans", Instance: otherLoggerBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.BeanConflictError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "Logger", target.Name)
				assert.Equal(t, "infraBeans.CreateLogger", target.Existing)
				assert.Equal(t, "otherLoggerBeans.CreateLogger", target.Incoming)
			},
		},
		{
			name: "bean named like a properties type",
			coll: beans.Collection{Name: "propertiesBeans", Instance: propertiesBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.BeanConflictError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "properties db", target.Existing)
			},
		},
		{
			name: "factory parameter cycle",
			coll: beans.Collection{Name: "cyclicBeans", Instance: cyclicBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.CyclicBeanDependencyError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "cyclicBeans", target.Collection)
			},
		},
		{
			name: "unbound parameter",
			coll: beans.Collection{Name: "unboundBeans", Instance: unboundBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.BeanConstructionError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "CreateA", target.Factory)
				assert.Contains(t, err.Error(), "Missing")
			},
		},
		{
			name: "factory error",
			coll: beans.Collection{Name: "failingBeans", Instance: failingBeans{}},
			assert: func(t *testing.T, err error) {
				var target beans.BeanConstructionError
				require.ErrorAs(t, err, &target)
				assert.ErrorIs(t, err, errBoom)
			},
		},
		{
			name:   "no result",
			coll:   beans.Collection{Name: "noResultBeans", Instance: noResultBeans{}},
			assert: assertInvalidFactory("CreateNothing"),
		},
		{
			name:   "two results",
			coll:   beans.Collection{Name: "twoResultBeans", Instance: twoResultBeans{}},
			assert: assertInvalidFactory("CreatePair"),
		},
		{
			name:   "error only",
			coll:   beans.Collection{Name: "errorOnlyBeans", Instance: errorOnlyBeans{}},
			assert: assertInvalidFactory("CreateErr"),
		},
		{
			name: "nil collection",
			coll: beans.Collection{Name: "nil"},
			assert: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, beans.ErrCollectionNil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newResolver(t)
			if tt.setup != nil {
				tt.setup(r)
			}

			records, err := r.Resolve(tt.coll)
			require.Error(t, err)
			assert.Nil(t, records)
			tt.assert(t, err)
		})
	}
}

func assertInvalidFactory(method string) func(t *testing.T, err error) {
	return func(t *testing.T, err error) {
		var target beans.InvalidFactoryError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, method, target.Factory)
	}
}

func TestNew_NoProperties(t *testing.T) {
	r, err := beans.New(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, r.Names())

	_, err = r.Resolve(beans.Collection{Name: "infraBeans", Instance: &infraBeans{}})

	var target beans.BeanConstructionError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "CreateDatabase", target.Factory)
}

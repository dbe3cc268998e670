package ioc_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/testutil"
)

const dbDocument = `{"db": {"host": "localhost", "port": 5432}}`

func fullApp(t *testing.T) *ioc.Container {
	return testutil.NewContainerBuilder(t).
		With(
			ioc.ClassOf(testutil.NewTestRepository),
			ioc.StructOf[testutil.TestService](),
			ioc.ClassOf(testutil.NewTestRequest),
			ioc.StructOf[testutil.TestBeans](),
			ioc.StructOf[testutil.TestController](),
			ioc.StructOf[testutil.DBProperties](),
		).
		WithDocument("application-properties.json", dbDocument).
		Run()
}

func TestContainer_Run(t *testing.T) {
	t.Run("wires every kind", func(t *testing.T) {
		t.Parallel()

		c := fullApp(t)

		svc := testutil.AssertResolvable[*testutil.TestService](t, c)
		repo := testutil.AssertResolvable[*testutil.TestRepository](t, c)

		assert.Same(t, repo, svc.Repo)
		require.NotNil(t, svc.DB)
		assert.Equal(t, "localhost", svc.DB.Host)
		assert.Equal(t, 5432, svc.DB.Port)
		require.NotNil(t, svc.Logger)
		assert.Equal(t, "localhost", svc.Logger.Prefix)

		controllers := c.Controllers()
		require.Len(t, controllers, 1)
		assert.Same(t, svc, controllers[0].(*testutil.TestController).Service)

		assert.Equal(t, ioc.StateInitialized, c.State("TestService"))
		assert.True(t, c.IsRunning())
	})

	t.Run("singleton lookups return the same instance", func(t *testing.T) {
		t.Parallel()

		c := fullApp(t)

		first, err := c.GetComponent("TestRepository")
		require.NoError(t, err)
		second, err := c.GetComponent("TestRepository")
		require.NoError(t, err)

		assert.Same(t, first, second)
	})

	t.Run("prototype lookups return fresh injected instances", func(t *testing.T) {
		t.Parallel()

		c := fullApp(t)

		first := testutil.AssertResolvable[*testutil.TestRequest](t, c)
		second := testutil.AssertResolvable[*testutil.TestRequest](t, c)

		assert.NotSame(t, first, second)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Same(t, first.Repo, second.Repo)
		assert.Equal(t, ioc.StateUnknown, c.State("TestRequest"), "prototypes are not tracked")
	})

	t.Run("beans and properties lookups", func(t *testing.T) {
		t.Parallel()

		c := fullApp(t)

		logger, err := ioc.Bean[*testutil.TestLogger](c)
		require.NoError(t, err)
		assert.Equal(t, "localhost", logger.Prefix)

		props, err := ioc.PropertiesOf[*testutil.DBProperties](c)
		require.NoError(t, err)
		assert.Equal(t, 5432, props.Port)

		_, ok := c.GetBean("Missing")
		assert.False(t, ok)

		_, err = ioc.Bean[*testutil.TestRepository](c)
		assert.ErrorIs(t, err, ioc.ErrBeanNotFound)

		_, err = c.GetComponent("Missing")
		assert.ErrorIs(t, err, ioc.ErrComponentNotFound)
	})
}

type (
	widgetA struct {
		ioc.BaseComponent
		B *widgetB
	}
	widgetB struct{ ioc.BaseComponent }
)

func (*widgetA) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{ioc.Field("B", func(a *widgetA) **widgetB { return &a.B })}
}

func TestContainer_DependencyResolution(t *testing.T) {
	t.Run("unregistered dependency names field and type", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).With(ioc.StructOf[widgetA]()).Build()

		err := c.Run(context.Background())
		cause := testutil.AssertBuildPhase(t, err, ioc.PhaseInjection)

		var target ioc.DependencyResolutionError
		require.ErrorAs(t, cause, &target)
		assert.Equal(t, "B", target.Field)
		assert.Equal(t, "widgetA", target.Entity)
		assert.Contains(t, err.Error(), "widgetB")
	})

	t.Run("registered singleton is injected", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).
			With(ioc.StructOf[widgetA](), ioc.StructOf[widgetB]()).
			Run()

		a := testutil.AssertResolvable[*widgetA](t, c)
		b := testutil.AssertResolvable[*widgetB](t, c)
		assert.Same(t, b, a.B)
	})
}

type (
	cycleA struct {
		ioc.BaseComponent
		B *cycleB
	}
	cycleB struct {
		ioc.BaseComponent
		A *cycleA
	}
)

func (*cycleA) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{ioc.Field("B", func(a *cycleA) **cycleB { return &a.B })}
}

func (*cycleB) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{ioc.Field("A", func(b *cycleB) **cycleA { return &b.A })}
}

func TestContainer_SingletonFieldCycleResolves(t *testing.T) {
	c := testutil.NewContainerBuilder(t).With(ioc.StructOf[cycleA](), ioc.StructOf[cycleB]()).Run()

	a := testutil.AssertResolvable[*cycleA](t, c)
	b := testutil.AssertResolvable[*cycleB](t, c)
	assert.Same(t, b, a.B)
	assert.Same(t, a, b.A)
}

// observer records the state of its peer while its own Init runs.
type observer struct {
	ioc.BaseComponent
	c    *ioc.Container
	peer string
	seen ioc.State
}

type (
	observerA struct{ observer }
	observerB struct{ observer }
)

func (o *observer) Init(context.Context) error {
	o.seen = o.c.State(o.peer)
	return nil
}

func TestContainer_InitRunsAfterInjection(t *testing.T) {
	c := ioc.New()
	require.NoError(t, c.Add(
		ioc.ClassOf(func() *observerA { return &observerA{observer{c: c, peer: "observerB"}} }),
		ioc.ClassOf(func() *observerB { return &observerB{observer{c: c, peer: "observerA"}} }),
	))
	require.NoError(t, c.Run(context.Background()))
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	a := testutil.AssertResolvable[*observerA](t, c)
	b := testutil.AssertResolvable[*observerB](t, c)

	assert.Equal(t, ioc.StateInjected, a.seen, "B was injected but not yet initialized")
	assert.Equal(t, ioc.StateInitialized, b.seen)
}

type (
	hookFirst  struct{ testutil.Hooked }
	hookSecond struct{ testutil.Hooked }
	hookThird  struct{ testutil.Hooked }
)

func hookedClasses(rec *testutil.Recorder, failSecond bool) []ioc.Class {
	return []ioc.Class{
		ioc.ClassOf(func() *hookFirst { return &hookFirst{testutil.Hooked{Name: "first", Recorder: rec}} }),
		ioc.ClassOf(func() *hookSecond {
			return &hookSecond{testutil.Hooked{Name: "second", Recorder: rec, FailInit: failSecond}}
		}),
		ioc.ClassOf(func() *hookThird { return &hookThird{testutil.Hooked{Name: "third", Recorder: rec}} }),
	}
}

func TestContainer_Lifecycle(t *testing.T) {
	t.Run("teardown is the reverse of construction", func(t *testing.T) {
		t.Parallel()

		rec := &testutil.Recorder{}
		c := testutil.NewContainerBuilder(t).With(hookedClasses(rec, false)...).Build()
		require.NoError(t, c.Run(context.Background()))
		require.NoError(t, c.Close(context.Background()))

		assert.Equal(t, []string{
			"first.Init", "second.Init", "third.Init",
			"third.Destroy", "second.Destroy", "first.Destroy",
		}, rec.Events())
		assert.Equal(t, ioc.StateDestroyed, c.State("hookFirst"))

		rec.Reset()
		require.NoError(t, c.Close(context.Background()))
		assert.Empty(t, rec.Events(), "close is idempotent")
	})

	t.Run("init failure rolls back initialized components", func(t *testing.T) {
		t.Parallel()

		rec := &testutil.Recorder{}
		c := testutil.NewContainerBuilder(t).With(hookedClasses(rec, true)...).Build()

		err := c.Run(context.Background())
		cause := testutil.AssertBuildPhase(t, err, ioc.PhaseLifecycle)

		var hookErr ioc.HookError
		require.ErrorAs(t, cause, &hookErr)
		assert.Equal(t, "hookSecond", hookErr.Component)
		assert.ErrorIs(t, err, testutil.ErrInit)

		assert.Equal(t, []string{"first.Init", "second.Init", "first.Destroy"}, rec.Events())
	})
}

func TestContainer_States(t *testing.T) {
	ctx := context.Background()

	t.Run("run twice", func(t *testing.T) {
		c := ioc.New()
		require.NoError(t, c.Run(ctx))
		assert.ErrorIs(t, c.Run(ctx), ioc.ErrAlreadyRunning)
		assert.ErrorIs(t, c.Add(ioc.StructOf[widgetB]()), ioc.ErrAlreadyRunning)
	})

	t.Run("run after close", func(t *testing.T) {
		c := ioc.New()
		require.NoError(t, c.Close(ctx))
		assert.ErrorIs(t, c.Run(ctx), ioc.ErrClosed)
		assert.ErrorIs(t, c.Register(ioc.ComponentKind, ioc.StructOf[widgetB]()), ioc.ErrClosed)
	})

	t.Run("lookup before run", func(t *testing.T) {
		c := testutil.NewContainerBuilder(t).With(ioc.StructOf[widgetB]()).Build()
		_, err := c.GetComponent("widgetB")
		assert.ErrorIs(t, err, ioc.ErrNotRunning)
		assert.False(t, c.IsRunning())
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		err := ioc.New().Run(canceled)
		cause := testutil.AssertBuildPhase(t, err, ioc.PhaseProperties)
		assert.ErrorIs(t, cause, context.Canceled)
	})
}

type nothing struct{}

type conflictingRepository struct{ ioc.BaseComponent }

func TestContainer_Registration(t *testing.T) {
	t.Run("same class twice is a no-op", func(t *testing.T) {
		c := ioc.New()
		require.NoError(t, c.Add(ioc.StructOf[widgetB]()))
		require.NoError(t, c.Add(ioc.StructOf[widgetB]()))
		assert.Equal(t, []string{"widgetB"}, c.View().Components)
	})

	t.Run("distinct classes with the same name conflict", func(t *testing.T) {
		type TestRepository struct{ ioc.BaseComponent }

		c := ioc.New()
		require.NoError(t, c.Add(ioc.ClassOf(testutil.NewTestRepository)))
		err := c.Add(ioc.StructOf[TestRepository]())

		var target ioc.NameConflictError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, "TestRepository", target.Name)
	})

	t.Run("class without capability", func(t *testing.T) {
		err := ioc.New().Add(ioc.StructOf[nothing]())

		var target ioc.TypeKindMismatchError
		require.ErrorAs(t, err, &target)
	})

	t.Run("class registered under a kind it cannot serve", func(t *testing.T) {
		err := ioc.New().Register(ioc.ControllerKind, ioc.StructOf[conflictingRepository]())

		var target ioc.TypeKindMismatchError
		require.ErrorAs(t, err, &target)
		assert.Equal(t, ioc.ControllerKind, target.Kind)
	})

	t.Run("zero class", func(t *testing.T) {
		assert.ErrorIs(t, ioc.New().Add(ioc.Class{}), ioc.ErrClassInvalid)
	})

	t.Run("nil constructor", func(t *testing.T) {
		var construct func() *widgetB
		assert.ErrorIs(t, ioc.New().Add(ioc.ClassOf(construct)), ioc.ErrConstructorNil)
	})
}

func TestContainer_PropertiesFailures(t *testing.T) {
	tests := []struct {
		name     string
		document string
		check    func(t *testing.T, cause error)
	}{
		{
			name:     "unknown key",
			document: `{"db": {"host": "h", "port": 1}, "unknown": {}}`,
			check: func(t *testing.T, cause error) {
				var target ioc.UnknownKeyError
				require.ErrorAs(t, cause, &target)
				assert.Equal(t, "unknown", target.Key)
			},
		},
		{
			name:     "missing key",
			document: `{}`,
			check: func(t *testing.T, cause error) {
				var target ioc.MissingKeyError
				require.ErrorAs(t, cause, &target)
				assert.Equal(t, "db", target.Key)
			},
		},
		{
			name:     "wrong field type",
			document: `{"db": {"host": "h", "port": "not a number"}}`,
			check: func(t *testing.T, cause error) {
				var target ioc.SchemaValidationError
				require.ErrorAs(t, cause, &target)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := testutil.NewContainerBuilder(t).
				With(ioc.StructOf[testutil.DBProperties]()).
				WithDocument("props.json", tt.document).
				Build()

			err := c.Run(context.Background())
			tt.check(t, testutil.AssertBuildPhase(t, err, ioc.PhaseProperties))
		})
	}

	t.Run("schema without document path", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).With(ioc.StructOf[testutil.DBProperties]()).Build()
		err := c.Run(context.Background())
		assert.ErrorIs(t, testutil.AssertBuildPhase(t, err, ioc.PhaseProperties), ioc.ErrPropertiesPathEmpty)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).WithDocument("props.toml", "").Build()
		err := c.Run(context.Background())

		var target ioc.UnsupportedFormatError
		require.ErrorAs(t, testutil.AssertBuildPhase(t, err, ioc.PhaseProperties), &target)
	})
}

type (
	Widget interface{ Spin() }
	Gadget struct{}
	Logger struct{}

	widgetBeans  struct{ ioc.BaseBeanCollection }
	loggerBeans  struct{ ioc.BaseBeanCollection }
	loggerBeans2 struct{}
)

func (*Gadget) Spin() {}

func (*widgetBeans) CreateWidget() Widget  { return &Gadget{} }
func (*loggerBeans) CreateLogger() *Logger { return &Logger{} }

func (*loggerBeans2) BeanCollectionName() string { return "secondary" }
func (*loggerBeans2) CreateLogger() *Logger      { return &Logger{} }

func TestContainer_BeanFailures(t *testing.T) {
	t.Run("declared type differs from produced type", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).With(ioc.StructOf[widgetBeans]()).Build()
		err := c.Run(context.Background())

		var target ioc.InvalidBeanError
		require.ErrorAs(t, testutil.AssertBuildPhase(t, err, ioc.PhaseBeans), &target)
		assert.Equal(t, "Widget", target.Name)
		assert.Equal(t, "Gadget", target.Actual)
	})

	t.Run("two collections producing the same bean", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainerBuilder(t).
			With(ioc.StructOf[loggerBeans](), ioc.StructOf[loggerBeans2]()).
			Build()
		err := c.Run(context.Background())

		var target ioc.BeanConflictError
		require.ErrorAs(t, testutil.AssertBuildPhase(t, err, ioc.PhaseBeans), &target)
		assert.Equal(t, "Logger", target.Name)
		assert.Equal(t, "secondary.CreateLogger", target.Incoming)
	})
}

func TestContainer_ConcurrentLookups(t *testing.T) {
	c := fullApp(t)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ioc.Resolve[*testutil.TestRequest](c); err != nil {
				errs <- err
			}
			if _, err := ioc.Resolve[*testutil.TestService](c); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestContainer_WithConfig(t *testing.T) {
	cfg := ioc.DefaultConfig()
	cfg.PropertiesPath = testutil.WriteFile(t, "props.yaml", "db:\n  host: yaml-host\n  port: 1\n")

	c := ioc.New(ioc.WithConfig(cfg))
	cfg.Server.Port = 1

	require.NoError(t, c.Add(ioc.StructOf[testutil.DBProperties]()))
	require.NoError(t, c.Run(context.Background()))

	assert.Equal(t, 8080, c.Config().Server.Port, "the container keeps its own copy")

	props, err := ioc.PropertiesOf[*testutil.DBProperties](c)
	require.NoError(t, err)
	assert.Equal(t, "yaml-host", props.Host)
}

func TestMustResolve(t *testing.T) {
	c := testutil.NewContainerBuilder(t).With(ioc.StructOf[widgetB]()).Run()
	assert.NotNil(t, ioc.MustResolve[*widgetB](c))
	assert.Panics(t, func() { ioc.MustResolve[*widgetA](c) })

	_, err := ioc.Resolve[*widgetA](c)
	assert.True(t, errors.Is(err, ioc.ErrComponentNotFound))
}

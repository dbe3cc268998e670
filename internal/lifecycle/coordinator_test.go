package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/ioc/internal/lifecycle"
)

type recorder struct {
	calls []string
}

type hooked struct {
	name    string
	rec     *recorder
	failOn  lifecycle.Hook
	failErr error
}

func (h *hooked) call(hook lifecycle.Hook) error {
	h.rec.calls = append(h.rec.calls, h.name+"."+string(hook))
	if h.failOn == hook {
		return h.failErr
	}
	return nil
}

func (h *hooked) PreInit(context.Context) error     { return h.call(lifecycle.HookPreInit) }
func (h *hooked) Init(context.Context) error        { return h.call(lifecycle.HookInit) }
func (h *hooked) PostInit(context.Context) error    { return h.call(lifecycle.HookPostInit) }
func (h *hooked) PreDestroy(context.Context) error  { return h.call(lifecycle.HookPreDestroy) }
func (h *hooked) Destroy(context.Context) error     { return h.call(lifecycle.HookDestroy) }
func (h *hooked) PostDestroy(context.Context) error { return h.call(lifecycle.HookPostDestroy) }

type closer struct {
	rec *recorder
	err error
}

func (c *closer) Close() error {
	c.rec.calls = append(c.rec.calls, "closer.Close")
	return c.err
}

type plain struct{}

func track(t *testing.T, c *lifecycle.Coordinator, items map[string]any, order ...string) {
	t.Helper()
	for _, name := range order {
		require.NoError(t, c.Track(name, items[name]))
		require.NoError(t, c.MarkInjected(name))
	}
}

func TestCoordinator_Order(t *testing.T) {
	rec := &recorder{}
	c := lifecycle.New(nil)
	track(t, c, map[string]any{
		"A": &hooked{name: "A", rec: rec},
		"B": &hooked{name: "B", rec: rec},
		"P": plain{},
	}, "A", "B", "P")

	require.NoError(t, c.Initialize(context.Background()))
	assert.Equal(t, []string{
		"A.PreInit", "A.Init", "A.PostInit",
		"B.PreInit", "B.Init", "B.PostInit",
	}, rec.calls)
	assert.Equal(t, lifecycle.Initialized, c.State("A"))
	assert.Equal(t, lifecycle.Initialized, c.State("P"))

	rec.calls = nil
	require.NoError(t, c.Initialize(context.Background()), "second initialize is a no-op")
	assert.Empty(t, rec.calls)

	require.NoError(t, c.Destroy(context.Background()))
	assert.Equal(t, []string{
		"B.PreDestroy", "B.Destroy", "B.PostDestroy",
		"A.PreDestroy", "A.Destroy", "A.PostDestroy",
	}, rec.calls)
	assert.Equal(t, lifecycle.Destroyed, c.State("A"))

	rec.calls = nil
	require.NoError(t, c.Destroy(context.Background()))
	assert.Empty(t, rec.calls)
	assert.ErrorIs(t, c.Initialize(context.Background()), lifecycle.ErrDestroyed)
}

func TestCoordinator_InitFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	errInit := errors.New("init failed")
	c := lifecycle.New(nil)
	track(t, c, map[string]any{
		"A": &hooked{name: "A", rec: rec},
		"B": &hooked{name: "B", rec: rec},
		"C": &hooked{name: "C", rec: rec, failOn: lifecycle.HookInit, failErr: errInit},
		"D": &hooked{name: "D", rec: rec},
	}, "A", "B", "C", "D")

	err := c.Initialize(context.Background())

	var hookErr lifecycle.HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "C", hookErr.Component)
	assert.Equal(t, lifecycle.HookInit, hookErr.Hook)
	assert.ErrorIs(t, err, errInit)

	assert.Equal(t, []string{
		"A.PreInit", "A.Init", "A.PostInit",
		"B.PreInit", "B.Init", "B.PostInit",
		"C.PreInit", "C.Init",
		"B.PreDestroy", "B.Destroy", "B.PostDestroy",
		"A.PreDestroy", "A.Destroy", "A.PostDestroy",
	}, rec.calls)

	assert.Equal(t, lifecycle.Destroyed, c.State("A"))
	assert.Equal(t, lifecycle.Injected, c.State("C"))
	assert.Equal(t, lifecycle.Injected, c.State("D"))
}

func TestCoordinator_TeardownAttemptsEverything(t *testing.T) {
	rec := &recorder{}
	errA := errors.New("a")
	errClose := errors.New("close")
	c := lifecycle.New(nil)
	track(t, c, map[string]any{
		"A":      &hooked{name: "A", rec: rec, failOn: lifecycle.HookPreDestroy, failErr: errA},
		"closer": &closer{rec: rec, err: errClose},
		"B":      &hooked{name: "B", rec: rec},
	}, "A", "closer", "B")
	require.NoError(t, c.Initialize(context.Background()))
	rec.calls = nil

	err := c.Destroy(context.Background())

	var teardown lifecycle.TeardownError
	require.ErrorAs(t, err, &teardown)
	assert.Len(t, teardown.Errors, 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errClose)

	assert.Equal(t, []string{
		"B.PreDestroy", "B.Destroy", "B.PostDestroy",
		"closer.Close",
		"A.PreDestroy", "A.Destroy", "A.PostDestroy",
	}, rec.calls)
}

func TestCoordinator_RequiresInjection(t *testing.T) {
	c := lifecycle.New(nil)
	require.NoError(t, c.Track("A", plain{}))
	require.NoError(t, c.Track("B", plain{}))
	require.NoError(t, c.MarkInjected("A"))

	err := c.Initialize(context.Background())

	var target lifecycle.NotInjectedError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, []string{"B"}, target.Components)
	assert.Equal(t, lifecycle.Constructed, c.State("B"))
}

func TestCoordinator_Tracking(t *testing.T) {
	c := lifecycle.New(nil)
	require.NoError(t, c.Track("A", plain{}))

	assert.ErrorIs(t, c.Track("A", plain{}), lifecycle.ErrAlreadyTracked)
	assert.ErrorIs(t, c.MarkInjected("missing"), lifecycle.ErrNotTracked)
	assert.Equal(t, lifecycle.Unknown, c.State("missing"))
	assert.Equal(t, []string{"A"}, c.Names())

	require.NoError(t, c.Destroy(context.Background()))
	assert.ErrorIs(t, c.Track("B", plain{}), lifecycle.ErrDestroyed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Constructed", lifecycle.Constructed.String())
	assert.Equal(t, "Destroying", lifecycle.Destroying.String())
	assert.Equal(t, "State(0)", lifecycle.Unknown.String())
}

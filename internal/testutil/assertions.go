package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/ioc"
)

// AssertResolvable checks that T can be resolved from c.
func AssertResolvable[T any](t *testing.T, c *ioc.Container) T {
	t.Helper()
	v, err := ioc.Resolve[T](c)
	require.NoError(t, err, "failed to resolve %T", *new(T))
	require.NotNil(t, v)
	return v
}

// AssertBuildPhase checks that err is a BuildError raised in phase and
// returns its cause.
func AssertBuildPhase(t *testing.T, err error, phase ioc.Phase) error {
	t.Helper()
	var buildErr ioc.BuildError
	require.True(t, errors.As(err, &buildErr), "expected BuildError, got %v", err)
	assert.Equal(t, phase, buildErr.Phase)
	return buildErr.Cause
}

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/junioryono/ioc"
)

// ContainerBuilder provides a fluent interface for building test containers.
type ContainerBuilder struct {
	t       *testing.T
	classes []ioc.Class
	opts    []ioc.Option
}

// NewContainerBuilder creates a new ContainerBuilder.
func NewContainerBuilder(t *testing.T) *ContainerBuilder {
	return &ContainerBuilder{t: t}
}

// With adds classes routed by their capabilities.
func (b *ContainerBuilder) With(classes ...ioc.Class) *ContainerBuilder {
	b.classes = append(b.classes, classes...)
	return b
}

// WithDocument writes content to a file named name in a temp dir and uses
// it as the properties document.
func (b *ContainerBuilder) WithDocument(name, content string) *ContainerBuilder {
	b.opts = append(b.opts, ioc.WithPropertiesPath(WriteFile(b.t, name, content)))
	return b
}

// WithOptions appends container options.
func (b *ContainerBuilder) WithOptions(opts ...ioc.Option) *ContainerBuilder {
	b.opts = append(b.opts, opts...)
	return b
}

// Build returns the container with every class added.
func (b *ContainerBuilder) Build() *ioc.Container {
	b.t.Helper()
	c := ioc.New(b.opts...)
	require.NoError(b.t, c.Add(b.classes...))
	return c
}

// Run builds and runs the container; it is closed on test cleanup.
func (b *ContainerBuilder) Run() *ioc.Container {
	b.t.Helper()
	c := b.Build()
	require.NoError(b.t, c.Run(context.Background()))
	b.t.Cleanup(func() {
		_ = c.Close(context.Background())
	})
	return c
}

// WriteFile writes content to name inside a fresh temp dir.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

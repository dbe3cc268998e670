package ioc

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/junioryono/ioc/internal/graph"
	"github.com/junioryono/ioc/internal/registry"
	"github.com/junioryono/ioc/internal/typeinfo"
)

// GraphFormat selects the output of WriteGraph.
type GraphFormat int

const (
	GraphText GraphFormat = iota
	GraphDOT
)

// WriteGraph writes the wiring of the container: one node per registered
// entity and produced bean, one edge per declared field or factory
// parameter. It may be called before Run; beans then appear only as
// unresolved targets.
func (c *Container) WriteGraph(w io.Writer, format GraphFormat) error {
	c.mu.RLock()
	g := c.dependencyGraph()
	c.mu.RUnlock()

	switch format {
	case GraphText:
		return graph.WriteText(w, g)
	case GraphDOT:
		return graph.WriteDOT(w, g)
	default:
		return fmt.Errorf("unknown graph format %d", format)
	}
}

// dependencyGraph must be called with c.mu held.
func (c *Container) dependencyGraph() *graph.Graph {
	g := graph.New()

	for _, d := range c.registry.List(registry.Properties) {
		g.AddNode(propertiesNode(d.Key), graph.KindProperties)
	}

	components := c.registry.List(registry.Component)
	for _, d := range components {
		kind := graph.KindSingleton
		if d.Scope == registry.Prototype {
			kind = graph.KindPrototype
		}
		g.AddNode(d.Name, kind)
	}

	controllers := c.registry.List(registry.Controller)
	for _, d := range controllers {
		g.AddNode(d.Name, graph.KindController)
	}

	collections := c.registry.List(registry.BeanCollection)
	for _, d := range collections {
		g.AddNode(d.Name, graph.KindBeanCollection)
	}

	for _, group := range [][]*registry.Descriptor{components, controllers, collections} {
		for _, d := range group {
			for _, dep := range d.Dependencies {
				g.AddEdge(d.Name, c.dependencyNode(dep.Type))
			}
		}
	}

	if c.beans != nil {
		for _, name := range c.beans.Names() {
			rec, _ := c.beans.Record(name)
			g.AddNode(name, graph.KindBean)
			g.AddEdge(name, rec.Collection)
			for _, in := range rec.Inputs {
				g.AddEdge(name, c.dependencyNode(in))
			}
		}
	}

	return g
}

// dependencyNode names the node a value of type t is read from.
func (c *Container) dependencyNode(t reflect.Type) string {
	if key, ok := c.propsTypes[t]; ok {
		return propertiesNode(key)
	}
	if t.Kind() != reflect.Pointer {
		if key, ok := c.propsTypes[reflect.PointerTo(t)]; ok {
			return propertiesNode(key)
		}
	}
	return typeinfo.NameOf(t)
}

func propertiesNode(key string) string {
	return "properties " + key
}

// warnPrototypeCycles logs a cycle made only of prototypes. Such a cycle
// fails every lookup of its members.
func (c *Container) warnPrototypeCycles() {
	err := c.dependencyGraph().DetectCycles(func(n *graph.Node) bool {
		return n.Kind == graph.KindPrototype
	})

	var cycle graph.CircularDependencyError
	if errors.As(err, &cycle) {
		c.log.Warn("prototype dependency cycle", "cycle", strings.Join(append(cycle.Path, cycle.Path[0]), " -> "))
	}
}

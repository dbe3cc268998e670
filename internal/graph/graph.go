// Package graph models the wiring of a container: every entity is a node
// and every declared field or factory input is an edge to the entity that
// satisfies it.
package graph

import (
	"fmt"
	"slices"
)

// Node kinds used by the container.
const (
	KindSingleton      = "singleton"
	KindPrototype      = "prototype"
	KindController     = "controller"
	KindBeanCollection = "bean collection"
	KindBean           = "bean"
	KindProperties     = "properties"
	KindUnresolved     = "unresolved"
)

// Node is an entity in the graph.
type Node struct {
	Name string
	Kind string

	// Dependencies lists the names this node depends on in declaration
	// order.
	Dependencies []string
}

// Graph is a directed dependency graph keyed by entity name. It is not
// safe for concurrent mutation.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds name with kind. Adding an existing name keeps the first
// kind unless it was unresolved.
func (g *Graph) AddNode(name, kind string) *Node {
	if n, ok := g.nodes[name]; ok {
		if n.Kind == KindUnresolved {
			n.Kind = kind
		}
		return n
	}

	n := &Node{Name: name, Kind: kind}
	g.nodes[name] = n
	g.order = append(g.order, name)
	return n
}

// AddEdge records that from depends on to. Missing endpoints are added as
// unresolved nodes. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	src := g.AddNode(from, KindUnresolved)
	g.AddNode(to, KindUnresolved)

	if !slices.Contains(src.Dependencies, to) {
		src.Dependencies = append(src.Dependencies, to)
	}
}

// Node returns the node named name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.order))
	for i, name := range g.order {
		out[i] = g.nodes[name]
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependents returns the names that depend on name, in insertion order.
func (g *Graph) Dependents(name string) []string {
	var out []string
	for _, n := range g.Nodes() {
		if slices.Contains(n.Dependencies, name) {
			out = append(out, n.Name)
		}
	}
	return out
}

// Unresolved returns the names added only as edge targets.
func (g *Graph) Unresolved() []string {
	var out []string
	for _, n := range g.Nodes() {
		if n.Kind == KindUnresolved {
			out = append(out, n.Name)
		}
	}
	return out
}

// TopologicalSort returns the nodes with dependencies before dependents.
// Ties keep insertion order.
func (g *Graph) TopologicalSort() ([]*Node, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, n := range g.nodes {
		inDegree[n.Name] = len(n.Dependencies)
	}

	dependents := make(map[string][]string, len(g.nodes))
	for _, name := range g.order {
		for _, dep := range g.nodes[name].Dependencies {
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var queue []string
	for _, name := range g.order {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	result := make([]*Node, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		for _, dependent := range dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.nodes) {
		if err := g.DetectCycles(nil); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("graph contains %d nodes but only %d could be sorted", len(g.nodes), len(result))
	}
	return result, nil
}

// DetectCycles reports the first cycle among the nodes accepted by keep.
// A nil keep accepts every node.
func (g *Graph) DetectCycles(keep func(*Node) bool) error {
	const (
		unvisited = iota
		visiting
		done
	)

	accepted := func(name string) bool {
		n, ok := g.nodes[name]
		return ok && (keep == nil || keep(n))
	}

	state := make(map[string]int, len(g.nodes))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = visiting
		path = append(path, name)

		for _, dep := range g.nodes[name].Dependencies {
			if !accepted(dep) {
				continue
			}
			switch state[dep] {
			case visiting:
				start := slices.Index(path, dep)
				return CircularDependencyError{Path: slices.Clone(path[start:])}
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range g.order {
		if state[name] != unvisited || !accepted(name) {
			continue
		}
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// Adjacency returns a copy of the edges keyed by node name. Nodes without
// dependencies map to an empty slice.
func (g *Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.nodes))
	for name, n := range g.nodes {
		out[name] = append([]string{}, n.Dependencies...)
	}
	return out
}

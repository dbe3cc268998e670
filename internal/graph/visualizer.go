package graph

import (
	"fmt"
	"io"
	"strings"
)

var nodeColors = map[string]string{
	KindSingleton:      "lightblue",
	KindPrototype:      "lightyellow",
	KindController:     "lightgreen",
	KindBeanCollection: "lightgray",
	KindBean:           "wheat",
	KindProperties:     "lavender",
	KindUnresolved:     "salmon",
}

// WriteDOT writes g in Graphviz DOT format.
func WriteDOT(w io.Writer, g *Graph) error {
	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box, style=filled];\n")

	ids := make(map[string]string, g.Len())
	for i, n := range g.Nodes() {
		ids[n.Name] = fmt.Sprintf("n%d", i)
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n",
			ids[n.Name], n.Name+"\n("+n.Kind+")", nodeColors[n.Kind])
	}

	for _, n := range g.Nodes() {
		for _, dep := range n.Dependencies {
			fmt.Fprintf(&b, "  %s -> %s;\n", ids[n.Name], ids[dep])
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes the nodes in dependency order, each followed by its
// dependencies and the nodes that use it. A graph with a cycle is written
// in insertion order and the cycle is reported at the end.
func WriteText(w io.Writer, g *Graph) error {
	var b strings.Builder
	b.WriteString("Dependency Graph\n================\n\n")

	nodes, cycle := g.TopologicalSort()
	if cycle != nil {
		nodes = g.Nodes()
	}

	edges := 0
	for _, n := range nodes {
		fmt.Fprintf(&b, "%s [%s]\n", n.Name, n.Kind)
		for i, dep := range n.Dependencies {
			branch := "├──"
			if i == len(n.Dependencies)-1 {
				branch = "└──"
			}
			fmt.Fprintf(&b, "  %s %s\n", branch, dep)
			edges++
		}
		if users := g.Dependents(n.Name); len(users) > 0 {
			fmt.Fprintf(&b, "  used by: %s\n", strings.Join(users, ", "))
		}
	}

	fmt.Fprintf(&b, "\nnodes: %d, edges: %d\n", g.Len(), edges)
	if unresolved := g.Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(&b, "unresolved: %s\n", strings.Join(unresolved, ", "))
	}
	if cycle != nil {
		fmt.Fprintf(&b, "cycle: %v\n", cycle)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

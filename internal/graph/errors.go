package graph

import (
	"fmt"
	"strings"
)

var _ error = CircularDependencyError{}

// CircularDependencyError names the nodes of a cycle in traversal order.
type CircularDependencyError struct {
	Path []string
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString("circular dependency detected:\n\n")

	for _, name := range e.Path {
		fmt.Fprintf(&b, "    %s\n      ↓\n", name)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, "    %s (cycle)\n", e.Path[0])
	}

	return b.String()
}

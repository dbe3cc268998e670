package ioc

import (
	"slices"

	"github.com/junioryono/ioc/internal/registry"
)

// ContextView is a read-only snapshot of a container, suitable for
// diagnostics endpoints and logging.
type ContextView struct {
	ID              string   `json:"id"`
	Running         bool     `json:"running"`
	Config          *Config  `json:"config,omitempty"`
	Components      []string `json:"components"`
	Controllers     []string `json:"controllers"`
	BeanCollections []string `json:"bean_collections"`
	Properties      []string `json:"properties"`
	Singletons      []string `json:"singletons"`
	Beans           []string `json:"beans"`

	// Dependencies maps every node of the wiring graph to the nodes it
	// reads from. Properties nodes are named "properties <key>".
	Dependencies map[string][]string `json:"dependencies"`
}

// View returns a snapshot of the registered names, the constructed
// singletons and the produced beans.
func (c *Container) View() ContextView {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := ContextView{
		ID:              c.id,
		Running:         c.ready && !c.closed,
		Config:          c.Config(),
		Components:      orEmpty(c.registry.Names(registry.Component)),
		Controllers:     orEmpty(c.registry.Names(registry.Controller)),
		BeanCollections: orEmpty(c.registry.Names(registry.BeanCollection)),
		Properties:      orEmpty(c.registry.Names(registry.Properties)),
		Singletons:      orEmpty(c.registry.InstanceNames()),
		Beans:           []string{},
		Dependencies:    c.dependencyGraph().Adjacency(),
	}
	if c.beans != nil {
		v.Beans = orEmpty(c.beans.Names())
	}

	slices.Sort(v.Properties)
	return v
}

func orEmpty(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}

package ioc

import "github.com/junioryono/ioc/internal/lifecycle"

// State is the lifecycle position of a singleton component.
type State = lifecycle.State

const (
	StateUnknown     = lifecycle.Unknown
	StateConstructed = lifecycle.Constructed
	StateInjected    = lifecycle.Injected
	StateInitialized = lifecycle.Initialized
	StateDestroying  = lifecycle.Destroying
	StateDestroyed   = lifecycle.Destroyed
)

// Lifecycle hooks. A singleton component may implement any of them; each is
// called once. Init hooks run in construction order after every component
// is injected, destroy hooks in reverse construction order on Close.
type (
	PreInitializer  = lifecycle.PreInitializer
	Initializer     = lifecycle.Initializer
	PostInitializer = lifecycle.PostInitializer
	PreDestroyer    = lifecycle.PreDestroyer
	Destroyer       = lifecycle.Destroyer
	PostDestroyer   = lifecycle.PostDestroyer
)

// Hook names a lifecycle hook in a HookError.
type Hook = lifecycle.Hook

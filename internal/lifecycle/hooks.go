package lifecycle

import "context"

// PreInitializer runs before Initializer once every entity is injected.
type PreInitializer interface {
	PreInit(ctx context.Context) error
}

// Initializer is the main initialization hook.
type Initializer interface {
	Init(ctx context.Context) error
}

// PostInitializer runs after Initializer.
type PostInitializer interface {
	PostInit(ctx context.Context) error
}

// PreDestroyer runs first on shutdown.
type PreDestroyer interface {
	PreDestroy(ctx context.Context) error
}

// Destroyer is the main shutdown hook.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// PostDestroyer runs last on shutdown.
type PostDestroyer interface {
	PostDestroy(ctx context.Context) error
}

// Disposable is released with Close when it has no Destroyer.
type Disposable interface {
	Close() error
}

// DisposableWithContext is released with Close(ctx) when it has no Destroyer.
type DisposableWithContext interface {
	Close(ctx context.Context) error
}

// Hook names a lifecycle hook.
type Hook string

const (
	HookPreInit     Hook = "PreInit"
	HookInit        Hook = "Init"
	HookPostInit    Hook = "PostInit"
	HookPreDestroy  Hook = "PreDestroy"
	HookDestroy     Hook = "Destroy"
	HookPostDestroy Hook = "PostDestroy"
	HookClose       Hook = "Close"
)

type step struct {
	hook Hook
	run  func(ctx context.Context) error
}

func initSteps(instance any) []step {
	var steps []step
	if h, ok := instance.(PreInitializer); ok {
		steps = append(steps, step{HookPreInit, h.PreInit})
	}
	if h, ok := instance.(Initializer); ok {
		steps = append(steps, step{HookInit, h.Init})
	}
	if h, ok := instance.(PostInitializer); ok {
		steps = append(steps, step{HookPostInit, h.PostInit})
	}
	return steps
}

func destroySteps(instance any) []step {
	var steps []step
	if h, ok := instance.(PreDestroyer); ok {
		steps = append(steps, step{HookPreDestroy, h.PreDestroy})
	}

	switch h := instance.(type) {
	case Destroyer:
		steps = append(steps, step{HookDestroy, h.Destroy})
	case DisposableWithContext:
		steps = append(steps, step{HookClose, h.Close})
	case Disposable:
		steps = append(steps, step{HookClose, func(context.Context) error { return h.Close() }})
	}

	if h, ok := instance.(PostDestroyer); ok {
		steps = append(steps, step{HookPostDestroy, h.PostDestroy})
	}
	return steps
}

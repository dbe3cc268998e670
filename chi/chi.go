// Package chi mounts the controllers of a running ioc container on a Chi
// router.
//
// Controllers opt in by implementing RouteRegistrar. Each one is mounted
// under its ControllerPrefix:
//
//	type UserController struct {
//	    ioc.BaseController
//	    Service *UserService
//	}
//
//	func (*UserController) ControllerPrefix() string { return "/users" }
//
//	func (c *UserController) RegisterRoutes(r chi.Router) {
//	    r.Get("/{id}", c.GetByID)
//	}
//
//	r := chi.NewRouter()
//	r.Use(iocchi.ContainerMiddleware(container))
//	if err := iocchi.Mount(r, container); err != nil {
//	    log.Fatal(err)
//	}
package chi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	gochi "github.com/go-chi/chi/v5"

	"github.com/junioryono/ioc"
	"github.com/junioryono/ioc/internal/typeinfo"
)

// ErrNotRunning is returned by Mount when the container has not been run.
var ErrNotRunning = ioc.ErrNotRunning

// RouteRegistrar is implemented by controllers that expose routes.
type RouteRegistrar interface {
	RegisterRoutes(r gochi.Router)
}

// MiddlewareProvider is implemented by controllers whose routes share
// middleware.
type MiddlewareProvider interface {
	Middlewares() []func(http.Handler) http.Handler
}

// MountError reports a controller that could not be mounted.
type MountError struct {
	Controller string
	Prefix     string
	Cause      error
}

var _ error = MountError{}

func (e MountError) Error() string {
	return fmt.Sprintf("could not mount controller %s at %q: %v", e.Controller, e.Prefix, e.Cause)
}

func (e MountError) Unwrap() error {
	return e.Cause
}

// Config holds the adapter configuration.
type Config struct {
	// Logger receives mount events. Defaults to slog.Default.
	Logger *slog.Logger

	// ErrorHandler is called when a handler cannot resolve its controller.
	// If nil, a default handler returning 500 Internal Server Error is used.
	ErrorHandler func(http.ResponseWriter, *http.Request, error)

	// PanicRecovery makes Handle recover from panics in the wrapped method.
	PanicRecovery bool
}

// Option configures the adapter.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithErrorHandler sets the handler for resolution failures.
func WithErrorHandler(h func(http.ResponseWriter, *http.Request, error)) Option {
	return func(c *Config) {
		c.ErrorHandler = h
	}
}

// WithPanicRecovery enables panic recovery in Handle.
func WithPanicRecovery(enabled bool) Option {
	return func(c *Config) {
		c.PanicRecovery = enabled
	}
}

func defaultConfig() *Config {
	return &Config{
		Logger: slog.Default(),
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		},
	}
}

func newConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// Mount registers the routes of every RouteRegistrar controller of c on r.
// A controller with an empty prefix is mounted at the router root inside a
// group. Controllers that do not register routes are skipped.
func Mount(r gochi.Router, c *ioc.Container, opts ...Option) error {
	if !c.IsRunning() {
		return ErrNotRunning
	}

	cfg := newConfig(opts)
	log := cfg.Logger.With("container", c.ID())

	mounted := 0
	for _, ctrl := range c.Controllers() {
		name := typeinfo.NameOfValue(ctrl)

		reg, ok := ctrl.(RouteRegistrar)
		if !ok {
			log.Debug("controller has no routes", "controller", name)
			continue
		}

		prefix := ""
		if p, ok := ctrl.(ioc.Controller); ok {
			prefix = normalizePrefix(p.ControllerPrefix())
		}

		var middlewares []func(http.Handler) http.Handler
		if mp, ok := ctrl.(MiddlewareProvider); ok {
			middlewares = mp.Middlewares()
		}

		if err := mount(r, prefix, reg, middlewares); err != nil {
			return MountError{Controller: name, Prefix: prefix, Cause: err}
		}

		log.Info("controller mounted", "controller", name, "prefix", prefix, "middlewares", len(middlewares))
		mounted++
	}

	log.Debug("controllers mounted", "count", mounted)
	return nil
}

// mount turns a routing panic from chi, such as a duplicate mount point,
// into an error.
func mount(r gochi.Router, prefix string, reg RouteRegistrar, middlewares []func(http.Handler) http.Handler) (err error) {
	defer func() {
		if v := recover(); v != nil {
			if e, ok := v.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", v)
		}
	}()

	routes := func(sub gochi.Router) {
		sub.Use(middlewares...)
		reg.RegisterRoutes(sub)
	}

	if prefix == "" {
		r.Group(routes)
		return nil
	}

	r.Route(prefix, routes)
	return nil
}

func normalizePrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c *ioc.Container) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the container attached by ContainerMiddleware.
func FromContext(ctx context.Context) (*ioc.Container, bool) {
	c, ok := ctx.Value(contextKey{}).(*ioc.Container)
	return c, ok && c != nil
}

// ContainerMiddleware attaches c to every request context.
func ContainerMiddleware(c *ioc.Container) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), c)))
		})
	}
}

// Handle wraps a method for lookup of T from the container attached to the
// request context. Prototype components are constructed per request.
//
//	r.Get("/ping", iocchi.Handle((*PingHandler).Ping))
func Handle[T any](method func(T, http.ResponseWriter, *http.Request), opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts)

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.PanicRecovery {
			defer func() {
				if v := recover(); v != nil {
					cfg.Logger.Error("panic in handler", "panic", v, "path", r.URL.Path)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
		}

		c, ok := FromContext(r.Context())
		if !ok {
			cfg.ErrorHandler(w, r, ErrNotRunning)
			return
		}

		target, err := ioc.Resolve[T](c)
		if err != nil {
			cfg.Logger.Error("failed to resolve handler target", "error", err)
			cfg.ErrorHandler(w, r, err)
			return
		}

		method(target, w, r)
	}
}

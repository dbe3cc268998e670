package ioc

import (
	"log/slog"

	"github.com/mohae/deepcopy"
)

// Option configures a Container.
type Option interface {
	apply(*options)
}

// options holds container configuration.
type options struct {
	logger         *slog.Logger
	propertiesPath string
	config         *Config
}

// optionFunc adapts a function to Option.
type optionFunc func(*options)

func (f optionFunc) apply(opts *options) {
	f(opts)
}

// WithLogger sets the logger the container and its phases write to.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithPropertiesPath sets the properties document read by Run. It takes
// precedence over Config.PropertiesPath.
func WithPropertiesPath(path string) Option {
	return optionFunc(func(opts *options) {
		opts.propertiesPath = path
	})
}

// WithConfig attaches the application configuration. The container keeps a
// deep copy, so later changes to cfg are not observed.
func WithConfig(cfg *Config) Option {
	return optionFunc(func(opts *options) {
		if cfg == nil {
			opts.config = nil
			return
		}
		opts.config = deepcopy.Copy(cfg).(*Config)
	})
}

func (o *options) resolvedPropertiesPath() string {
	if o.propertiesPath != "" {
		return o.propertiesPath
	}
	if o.config != nil {
		return o.config.PropertiesPath
	}
	return ""
}

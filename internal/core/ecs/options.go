package ecs

import "go.uber.org/zap"

// Option configures a Context.
type Option func(*Context)

// WithStartCreationIndex sets the first creation index handed out, and the
// value ResetCreationIndex returns to. Defaults to 1.
func WithStartCreationIndex(n uint32) Option {
	return func(c *Context) { c.startCreationIndex = n }
}

// WithRegistry scopes component ids to r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(c *Context) { c.registry = r }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Context) { c.log = log }
}

// WithName labels the context in log output.
func WithName(name string) Option {
	return func(c *Context) { c.name = name }
}

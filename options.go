package ioc

import "log/slog"

// Option configures a Registry.
type Option func(*Registry)

// WithDefaultLifetime sets the lifetime used by entries registered without one.
// LifetimeUnspecified normalizes to LifetimeTransient; an unknown lifetime is
// ignored with a warning.
func WithDefaultLifetime(l Lifetime) Option {
	return func(r *Registry) {
		r.defaultLifetime = normalizeDefault(l)
	}
}

// WithLogger sets the structured logger. A nil logger keeps the discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithIdentity replaces the goroutine based execution identity used by per-thread lifetimes.
func WithIdentity(fn IdentityFunc) Option {
	return func(r *Registry) {
		if fn != nil {
			r.identity = fn
		}
	}
}

// WithStrictDependencies makes an unregistered constructor parameter fail construction
// with *UnresolvedDependencyError instead of receiving the parameter's zero value.
func WithStrictDependencies() Option {
	return func(r *Registry) {
		r.strict = true
	}
}

// WithLifetimeOverride assigns a lifetime to a contract at registration time.
// The contract is named either by its reflect.Type string ("app.Cache") or by
// its QualifiedName ("github.com/acme/app.Cache"). Unknown lifetimes are
// ignored with a warning; see Registry.UnusedOverrides for names that never match.
func WithLifetimeOverride(contract string, l Lifetime) Option {
	return func(r *Registry) {
		r.overrides[contract] = l
	}
}

func normalizeDefault(l Lifetime) Lifetime {
	if l == LifetimeUnspecified {
		return LifetimeTransient
	}
	return l
}

// Package ioc provides a lifetime-aware inversion-of-control registry.
package ioc

import (
	"fmt"
	"reflect"
	"strings"
)

// Lifetime defines the reuse policy of instances produced for a contract.
type Lifetime string

// Available lifetimes
const (
	// LifetimeUnspecified defers to the registry's default lifetime
	LifetimeUnspecified Lifetime = ""
	// LifetimeTransient creates a new instance for each resolution
	LifetimeTransient Lifetime = "transient"
	// LifetimeSingleton shares one lazily created instance for the lifetime of the registry
	LifetimeSingleton Lifetime = "singleton"
	// LifetimeHierarchical behaves like a singleton for direct resolution but gives every
	// dependent constructor its own private instance
	LifetimeHierarchical Lifetime = "hierarchical"
	// LifetimePerThread shares one instance per execution identity (goroutine by default)
	LifetimePerThread Lifetime = "per_thread"
)

func (l Lifetime) String() string {
	if l == LifetimeUnspecified {
		return "unspecified"
	}
	return string(l)
}

// Valid reports whether l is one of the declared lifetimes.
func (l Lifetime) Valid() bool {
	switch l {
	case LifetimeUnspecified, LifetimeTransient, LifetimeSingleton, LifetimeHierarchical, LifetimePerThread:
		return true
	}
	return false
}

// ParseLifetime converts a textual lifetime name into a Lifetime.
// Matching is case-insensitive; "", "default" and "unspecified" map to LifetimeUnspecified.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", "unspecified":
		return LifetimeUnspecified, nil
	case "transient":
		return LifetimeTransient, nil
	case "singleton":
		return LifetimeSingleton, nil
	case "hierarchical":
		return LifetimeHierarchical, nil
	case "per_thread", "perthread", "per-thread":
		return LifetimePerThread, nil
	}
	return LifetimeUnspecified, fmt.Errorf("unknown lifetime %q", s)
}

// IdentityFunc returns an opaque identity of the current execution context.
// Values must be comparable; they key the per-thread instance cache.
type IdentityFunc func() any

// Resolver resolves instances by contract type.
type Resolver interface {
	Resolve(contract reflect.Type) (any, error)
}

package ioc

import "sync"

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default returns the process-wide registry. The first call that finds no
// registry constructs one with default options and stores it; every later
// call returns that same registry.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// InitDefault constructs and stores the process-wide registry with the given
// options. It fails with ErrDefaultInitialized once a default registry exists.
func InitDefault(options ...Option) (*Registry, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil {
		return nil, ErrDefaultInitialized
	}
	defaultRegistry = New(options...)
	return defaultRegistry, nil
}

// SetDefault stores r as the process-wide registry. It fails with
// ErrDefaultInitialized once a default registry exists.
func SetDefault(r *Registry) error {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry != nil {
		return ErrDefaultInitialized
	}
	defaultRegistry = r
	return nil
}

// ResetDefault forgets the process-wide registry.
// This function is intended for testing purposes only.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = nil
}

package ioc

import (
	"fmt"
	"reflect"
	"sync"
)

// entry is the per-contract registration record together with its cache state.
// lifetime, implementation and fixed are guarded by the owning registry's lock;
// instance, initialized and perThread by the entry's own mutex.
type entry struct {
	registry       *Registry
	contract       reflect.Type
	implementation reflect.Type
	lifetime       Lifetime
	fixed          reflect.Value

	mu          sync.Mutex
	initialized bool
	instance    reflect.Value
	perThread   map[any]reflect.Value
}

func newEntry(r *Registry, contract, implementation reflect.Type) *entry {
	return &entry{
		registry:       r,
		contract:       contract,
		implementation: implementation,
		lifetime:       LifetimeUnspecified,
	}
}

// snapshot returns the registry-guarded fields with the default lifetime already applied.
func (e *entry) snapshot() (reflect.Type, Lifetime, reflect.Value) {
	e.registry.mu.RLock()
	defer e.registry.mu.RUnlock()
	lifetime := e.lifetime
	if lifetime == LifetimeUnspecified {
		lifetime = e.registry.defaultLifetime
	}
	return e.implementation, lifetime, e.fixed
}

func (e *entry) acquire(res *resolution, isParameter bool) (reflect.Value, error) {
	implementation, lifetime, fixed := e.snapshot()
	if fixed.IsValid() {
		return fixed, nil
	}

	switch lifetime {
	case LifetimeSingleton:
		return e.shared(res, implementation)
	case LifetimeHierarchical:
		// Each dependent gets a private instance; direct resolution is stable.
		if isParameter {
			return e.construct(res, implementation)
		}
		return e.shared(res, implementation)
	case LifetimePerThread:
		return e.threadLocal(res, implementation)
	case LifetimeTransient:
		return e.construct(res, implementation)
	default:
		return reflect.Value{}, fmt.Errorf("ioc: unknown lifetime %q for %s", string(lifetime), e.contract)
	}
}

// shared holds the entry lock across check, construct and store so the
// instance is built exactly once. A failed construction leaves the slot empty.
func (e *entry) shared(res *resolution, implementation reflect.Type) (reflect.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return e.instance, nil
	}
	v, err := e.construct(res, implementation)
	if err != nil {
		return reflect.Value{}, err
	}
	e.instance = v
	e.initialized = true
	return v, nil
}

// threadLocal builds outside the lock so distinct identities never wait on each other.
// When two goroutines share an identity the first stored instance wins.
func (e *entry) threadLocal(res *resolution, implementation reflect.Type) (reflect.Value, error) {
	e.mu.Lock()
	v, ok := e.perThread[res.identity]
	e.mu.Unlock()
	if ok {
		return v, nil
	}

	v, err := e.construct(res, implementation)
	if err != nil {
		return reflect.Value{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.perThread[res.identity]; ok {
		return existing, nil
	}
	if e.perThread == nil {
		e.perThread = make(map[any]reflect.Value)
	}
	e.perThread[res.identity] = v
	return v, nil
}

// release drops the per-thread instance owned by identity.
func (e *entry) release(identity any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.perThread[identity]; !ok {
		return false
	}
	delete(e.perThread, identity)
	return true
}

// construct builds a new instance with the selected constructor, resolving its
// parameters left to right.
func (e *entry) construct(res *resolution, implementation reflect.Type) (reflect.Value, error) {
	ctor := selectConstructor(e.registry.constructors.lookup(implementation))
	if ctor == nil {
		res.logger.Debug("Constructing zero value.", "implementation", implementation.String())
		return zeroConstruct(implementation), nil
	}

	args := make([]reflect.Value, len(ctor.params))
	for i, paramType := range ctor.params {
		v, err := e.registry.resolve(res, paramType, true)
		if err != nil {
			return reflect.Value{}, err
		}
		if !v.IsValid() {
			if e.registry.strict {
				return reflect.Value{}, &UnresolvedDependencyError{
					Implementation: implementation,
					Parameter:      paramType,
					Index:          i,
				}
			}
			res.logger.Warn("Unresolved constructor dependency, passing zero value.",
				"implementation", implementation.String(),
				"parameter", paramType.String(),
				"index", i)
			v = reflect.Zero(paramType)
		}
		args[i] = v
	}

	res.logger.Debug("Invoking constructor.",
		"implementation", implementation.String(),
		"params", len(args),
		"preferred", ctor.preferred)
	return ctor.invoke(args)
}

// state reports cache occupancy for diagnostics.
func (e *entry) state() (cached bool, threads int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized, len(e.perThread)
}

package ioc

import (
	"context"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/centraunit/ioc/internal/ctxlog"
)

// Registry maps contract types to resolver entries and resolves object graphs
// by walking declared constructors. It is safe for concurrent use.
type Registry struct {
	mu              sync.RWMutex
	entries         map[reflect.Type]*entry
	defaultLifetime Lifetime
	overrides       map[string]Lifetime
	matched         map[string]bool

	constructors *catalog
	identity     IdentityFunc
	strict       bool
	logger       *slog.Logger

	// goroutine id -> *resolutionState
	chains sync.Map
}

var _ Resolver = (*Registry)(nil)

// resolution carries per-call state down a dependency walk.
type resolution struct {
	identity any
	logger   *slog.Logger
}

type resolutionState struct {
	chain []reflect.Type
}

// New creates an empty registry. The default lifetime is transient.
func New(options ...Option) *Registry {
	r := &Registry{
		entries:         make(map[reflect.Type]*entry, 32),
		defaultLifetime: LifetimeTransient,
		overrides:       make(map[string]Lifetime),
		matched:         make(map[string]bool),
		constructors:    newCatalog(),
		identity:        GoroutineIdentity,
		logger:          ctxlog.Discard(),
	}
	for _, opt := range options {
		opt(r)
	}

	if !r.defaultLifetime.Valid() {
		r.logger.Warn("Ignoring unknown default lifetime.", "lifetime", string(r.defaultLifetime))
		r.defaultLifetime = LifetimeTransient
	}
	for contract, l := range r.overrides {
		if !l.Valid() {
			r.logger.Warn("Ignoring unknown lifetime override.", "contract", contract, "lifetime", string(l))
			delete(r.overrides, contract)
		}
	}
	return r
}

// DefaultLifetime returns the lifetime applied to entries registered without one.
func (r *Registry) DefaultLifetime() Lifetime {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultLifetime
}

// SetDefaultLifetime changes the default lifetime. It affects entries resolved
// afterwards; cached instances are kept. An unknown lifetime is ignored with a warning.
func (r *Registry) SetDefaultLifetime(l Lifetime) {
	if !l.Valid() {
		r.logger.Warn("Ignoring unknown default lifetime.", "lifetime", string(l))
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultLifetime = normalizeDefault(l)
}

// Register binds contract to implementation. The implementation type must be
// assignable to the contract. The returned handle configures the new entry.
func (r *Registry) Register(contract, implementation reflect.Type) (*Registration, error) {
	if err := checkAssignable(contract, implementation); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.addLocked(contract, implementation)
	if err != nil {
		return nil, err
	}
	for _, name := range []string{contract.String(), QualifiedName(contract)} {
		if l, ok := r.overrides[name]; ok {
			e.lifetime = l
			r.matched[name] = true
			break
		}
	}

	r.logger.Debug("Registered contract.",
		"contract", contract.String(),
		"implementation", implementation.String(),
		"lifetime", e.lifetime.String())
	return &Registration{registry: r, entry: e}, nil
}

// RegisterInstance binds contract to a pre-built instance. Resolution always
// returns that instance and the entry's lifetime is forced to singleton.
func (r *Registry) RegisterInstance(contract reflect.Type, instance any) (*Registration, error) {
	var implementation reflect.Type
	if instance != nil {
		implementation = reflect.TypeOf(instance)
	}
	if err := checkAssignable(contract, implementation); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, err := r.addLocked(contract, implementation)
	if err != nil {
		return nil, err
	}
	e.fixed = reflect.ValueOf(instance)
	e.lifetime = LifetimeSingleton

	r.logger.Debug("Registered instance.",
		"contract", contract.String(),
		"implementation", implementation.String())
	return &Registration{registry: r, entry: e}, nil
}

func (r *Registry) addLocked(contract, implementation reflect.Type) (*entry, error) {
	if _, exists := r.entries[contract]; exists {
		return nil, &RegistrationError{
			Contract:       contract,
			Implementation: implementation,
			Reason:         ReasonAlreadyRegistered,
		}
	}
	e := newEntry(r, contract, implementation)
	r.entries[contract] = e
	return e, nil
}

// Release drops every per-thread instance owned by identity and returns how
// many were removed. Long-running code that mints identities, such as one per
// request, calls it when the identity's work is done.
func (r *Registry) Release(identity any) int {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	released := 0
	for _, e := range entries {
		if e.release(identity) {
			released++
		}
	}
	if released > 0 {
		r.logger.Debug("Released per-thread instances.", "identity", identity, "count", released)
	}
	return released
}

// UnusedOverrides returns the lifetime override keys that no registration has
// matched so far, sorted. A non-empty result after wiring usually means a
// misspelled contract name.
func (r *Registry) UnusedOverrides() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var unused []string
	for name := range r.overrides {
		if !r.matched[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	return unused
}

// IsRegistered reports whether contract has an entry.
func (r *Registry) IsRegistered(contract reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[contract]
	return ok
}

// DefineConstructor declares fn as a constructor of the type it returns.
// Parameters are resolved from the registry when an instance is built.
func (r *Registry) DefineConstructor(fn any) error {
	return r.defineConstructor(fn, false)
}

// DefinePreferredConstructor declares fn as a constructor that is chosen over
// any other constructor of the same type regardless of arity.
func (r *Registry) DefinePreferredConstructor(fn any) error {
	return r.defineConstructor(fn, true)
}

func (r *Registry) defineConstructor(fn any, preferred bool) error {
	ctor, err := parseConstructor(fn, preferred)
	if err != nil {
		var implementation reflect.Type
		if fn != nil {
			implementation = reflect.TypeOf(fn)
		}
		return &RegistrationError{
			Implementation: implementation,
			Reason:         ReasonInvalidConstructor,
			Detail:         err.Error(),
		}
	}
	r.constructors.add(ctor)
	r.logger.Debug("Defined constructor.",
		"implementation", ctor.result.String(),
		"params", len(ctor.params),
		"preferred", preferred)
	return nil
}

// Resolve returns an instance for contract. An unregistered contract yields
// (nil, nil). Errors returned by user constructors are passed through unchanged.
func (r *Registry) Resolve(contract reflect.Type) (any, error) {
	return r.ResolveContext(context.Background(), contract)
}

// ResolveContext is Resolve with an explicit context. The context may carry an
// execution identity (WithExecutionID) and a logger (ContextWithLogger).
func (r *Registry) ResolveContext(ctx context.Context, contract reflect.Type) (any, error) {
	res := &resolution{logger: ctxlog.FromContext(ctx, r.logger)}
	if id, ok := ExecutionID(ctx); ok {
		res.identity = id
	} else {
		res.identity = r.identity()
	}

	v, err := r.resolve(res, contract, false)
	if err != nil || !v.IsValid() {
		return nil, err
	}
	return v.Interface(), nil
}

// resolve looks up the entry and acquires an instance. isParameter marks a
// request made to fill a constructor parameter.
func (r *Registry) resolve(res *resolution, contract reflect.Type, isParameter bool) (reflect.Value, error) {
	r.mu.RLock()
	e, ok := r.entries[contract]
	r.mu.RUnlock()
	if !ok {
		return reflect.Value{}, nil
	}

	if err := r.startResolving(contract); err != nil {
		return reflect.Value{}, err
	}
	defer r.finishResolving()

	return e.acquire(res, isParameter)
}

func (r *Registry) getResolutionState() *resolutionState {
	id := goid()
	if state, ok := r.chains.Load(id); ok {
		return state.(*resolutionState)
	}
	state := &resolutionState{chain: make([]reflect.Type, 0, 8)}
	r.chains.Store(id, state)
	return state
}

func (r *Registry) startResolving(contract reflect.Type) error {
	state := r.getResolutionState()
	for i, t := range state.chain {
		if t == contract {
			path := append(append([]reflect.Type(nil), state.chain[i:]...), contract)
			return &CircularDependencyError{Path: path}
		}
	}
	state.chain = append(state.chain, contract)
	return nil
}

func (r *Registry) finishResolving() {
	id := goid()
	s, ok := r.chains.Load(id)
	if !ok {
		return
	}
	state := s.(*resolutionState)
	state.chain = state.chain[:len(state.chain)-1]
	if len(state.chain) == 0 {
		r.chains.Delete(id)
	}
}

func checkAssignable(contract, implementation reflect.Type) error {
	if contract == nil || implementation == nil || !implementation.AssignableTo(contract) {
		return &RegistrationError{
			Contract:       contract,
			Implementation: implementation,
			Reason:         ReasonNotAssignable,
		}
	}
	return nil
}

// Registration is the handle returned by a successful registration.
type Registration struct {
	registry *Registry
	entry    *entry
}

// As sets the entry's lifetime. Instance registrations stay singletons and an
// unknown lifetime leaves the entry unchanged.
func (h *Registration) As(l Lifetime) *Registration {
	if !l.Valid() {
		h.registry.logger.Warn("Ignoring unknown lifetime.",
			"contract", h.entry.contract.String(),
			"lifetime", string(l))
		return h
	}
	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	if !h.entry.fixed.IsValid() {
		h.entry.lifetime = l
	}
	return h
}

// Instance promotes the entry to a fixed instance and forces the singleton lifetime.
func (h *Registration) Instance(instance any) error {
	var implementation reflect.Type
	if instance != nil {
		implementation = reflect.TypeOf(instance)
	}
	if err := checkAssignable(h.entry.contract, implementation); err != nil {
		return err
	}

	h.registry.mu.Lock()
	defer h.registry.mu.Unlock()
	h.entry.fixed = reflect.ValueOf(instance)
	h.entry.implementation = implementation
	h.entry.lifetime = LifetimeSingleton
	return nil
}

// Constructor declares fn as a constructor of the entry's implementation type.
func (h *Registration) Constructor(fn any) error {
	return h.constructor(fn, false)
}

// PreferredConstructor declares fn as the preferred constructor of the entry's implementation type.
func (h *Registration) PreferredConstructor(fn any) error {
	return h.constructor(fn, true)
}

func (h *Registration) constructor(fn any, preferred bool) error {
	ctor, err := parseConstructor(fn, preferred)
	if err == nil && ctor.result != h.Implementation() {
		return &RegistrationError{
			Contract:       h.entry.contract,
			Implementation: h.Implementation(),
			Reason:         ReasonInvalidConstructor,
			Detail:         "constructor returns " + ctor.result.String(),
		}
	}
	return h.registry.defineConstructor(fn, preferred)
}

// Contract returns the registered contract type.
func (h *Registration) Contract() reflect.Type { return h.entry.contract }

// Implementation returns the registered implementation type.
func (h *Registration) Implementation() reflect.Type {
	h.registry.mu.RLock()
	defer h.registry.mu.RUnlock()
	return h.entry.implementation
}

// Lifetime returns the entry's declared lifetime, which may be unspecified.
func (h *Registration) Lifetime() Lifetime {
	h.registry.mu.RLock()
	defer h.registry.mu.RUnlock()
	return h.entry.lifetime
}

// QualifiedName returns t's name with its full import path, for example
// "*github.com/acme/app.Cache". Types without a package path use t.String().
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		return "*" + QualifiedName(t.Elem())
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register binds contract C to implementation I.
func Register[C, I any](r *Registry) (*Registration, error) {
	return r.Register(TypeOf[C](), TypeOf[I]())
}

// RegisterInstance binds contract C to instance.
func RegisterInstance[C any](r *Registry, instance C) (*Registration, error) {
	return r.RegisterInstance(TypeOf[C](), instance)
}

// Resolve resolves contract C. The zero value is returned when C is not registered.
func Resolve[C any](r *Registry) (C, error) {
	return ResolveContext[C](context.Background(), r)
}

// ResolveContext resolves contract C using ctx for identity and logging.
func ResolveContext[C any](ctx context.Context, r *Registry) (C, error) {
	var zero C
	v, err := r.ResolveContext(ctx, TypeOf[C]())
	if err != nil || v == nil {
		return zero, err
	}
	typed, ok := v.(C)
	if !ok {
		return zero, nil
	}
	return typed, nil
}

// Package locator pairs views with their view models.
//
// A Locator keeps its own tables, keyed by the view's type name, and is
// independent from the ioc registry. When a view is attached, the locator
// looks for a registered factory, then for an explicitly registered model
// type, and finally applies a naming convention to find the model type among
// the known model types. Model types are built by the configured Activator.
package locator

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/centraunit/ioc"
	"github.com/centraunit/ioc/internal/ctxlog"
)

// Factory builds a view model for a view.
type Factory func() (any, error)

// NameResolver maps a view type name to the expected view model type name.
type NameResolver func(viewName string) string

// Activator builds an instance of a view model type.
type Activator func(t reflect.Type) (any, error)

// ModelSetter is implemented by views that accept their view model on attach.
type ModelSetter interface {
	SetModel(model any)
}

// NotFoundError is returned when no view model can be found for a view.
type NotFoundError struct {
	View      string
	ModelName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no view model for view %s (looked for %s)", e.View, e.ModelName)
}

// Locator is safe for concurrent use.
type Locator struct {
	mu          sync.RWMutex
	factories   map[string]Factory
	types       map[string]reflect.Type
	models      map[string]reflect.Type
	resolveName NameResolver
	activate    Activator
	logger      *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithNameResolver replaces DefaultNameResolver.
func WithNameResolver(fn NameResolver) Option {
	return func(l *Locator) {
		if fn != nil {
			l.resolveName = fn
		}
	}
}

// WithActivator replaces DefaultActivator.
func WithActivator(fn Activator) Option {
	return func(l *Locator) {
		if fn != nil {
			l.activate = fn
		}
	}
}

// New creates an empty locator using the default convention and activator.
func New(options ...Option) *Locator {
	l := &Locator{
		factories:   make(map[string]Factory),
		types:       make(map[string]reflect.Type),
		models:      make(map[string]reflect.Type),
		resolveName: DefaultNameResolver,
		activate:    DefaultActivator,
		logger:      ctxlog.Discard(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// RegisterFactory registers a factory for the view with the given type name.
func (l *Locator) RegisterFactory(viewName string, f Factory) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.factories[viewName] = f
}

// RegisterType maps the view with the given type name to a view model type.
func (l *Locator) RegisterType(viewName string, model reflect.Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.types[viewName] = model
}

// RegisterModelType makes a view model type discoverable by the naming convention.
func (l *Locator) RegisterModelType(model reflect.Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.models[TypeName(model)] = model
}

// SetNameResolver replaces the naming convention.
func (l *Locator) SetNameResolver(fn NameResolver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn == nil {
		fn = DefaultNameResolver
	}
	l.resolveName = fn
}

// SetActivator replaces the view model activator.
func (l *Locator) SetActivator(fn Activator) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn == nil {
		fn = DefaultActivator
	}
	l.activate = fn
}

// Locate returns a view model for the view type.
func (l *Locator) Locate(viewType reflect.Type) (any, error) {
	viewName := TypeName(viewType)

	l.mu.RLock()
	factory, hasFactory := l.factories[viewName]
	model, hasType := l.types[viewName]
	resolveName := l.resolveName
	activate := l.activate
	l.mu.RUnlock()

	if hasFactory {
		l.logger.Debug("Locating view model via factory.", "view", viewName)
		return factory()
	}

	modelName := TypeName(model)
	if !hasType {
		modelName = resolveName(viewName)
		l.mu.RLock()
		model, hasType = l.models[modelName]
		l.mu.RUnlock()
	}
	if !hasType {
		return nil, &NotFoundError{View: viewName, ModelName: modelName}
	}

	l.logger.Debug("Activating view model.", "view", viewName, "model", modelName)
	return activate(model)
}

// AutoWire locates the view model for view and hands it to the view when it
// implements ModelSetter.
func (l *Locator) AutoWire(view any) (any, error) {
	if view == nil {
		return nil, &NotFoundError{View: "<nil>"}
	}
	model, err := l.Locate(reflect.TypeOf(view))
	if err != nil {
		return nil, err
	}
	if setter, ok := view.(ModelSetter); ok {
		setter.SetModel(model)
	}
	return model, nil
}

// RegisterFactoryFor registers f for view type V.
func RegisterFactoryFor[V any](l *Locator, f Factory) {
	l.RegisterFactory(TypeName(ioc.TypeOf[V]()), f)
}

// RegisterTypeFor maps view type V to view model type M.
func RegisterTypeFor[V, M any](l *Locator) {
	l.RegisterType(TypeName(ioc.TypeOf[V]()), ioc.TypeOf[M]())
}

// TypeName returns "{package path}.{Name}" for t, looking through pointers.
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// DefaultNameResolver maps "pkg.FooView" to "pkg.FooViewModel" and "pkg.Foo"
// to "pkg.FooViewModel".
func DefaultNameResolver(viewName string) string {
	if strings.HasSuffix(viewName, "View") {
		return viewName + "Model"
	}
	return viewName + "ViewModel"
}

// DefaultActivator allocates the zero value of t; pointer types get a pointer
// to a fresh zero value.
func DefaultActivator(t reflect.Type) (any, error) {
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface(), nil
	}
	return reflect.New(t).Elem().Interface(), nil
}

// RegistryActivator builds view models through an ioc registry, falling back
// to DefaultActivator for types the registry does not know.
func RegistryActivator(r *ioc.Registry) Activator {
	return func(t reflect.Type) (any, error) {
		if !r.IsRegistered(t) {
			return DefaultActivator(t)
		}
		return r.Resolve(t)
	}
}

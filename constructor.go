package ioc

import (
	"fmt"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// constructor describes one way of building an implementation type.
// Supported signatures:
//   - func() T
//   - func() (T, error)
//   - func(Dep1, Dep2, ...) T
//   - func(Dep1, Dep2, ...) (T, error)
type constructor struct {
	fn           reflect.Value
	params       []reflect.Type
	result       reflect.Type
	returnsError bool
	preferred    bool
}

func parseConstructor(fn any, preferred bool) (*constructor, error) {
	if fn == nil {
		return nil, fmt.Errorf("constructor cannot be nil")
	}

	fnValue := reflect.ValueOf(fn)
	fnType := fnValue.Type()
	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function, got %v", fnType.Kind())
	}
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("constructor must not be variadic")
	}

	numOut := fnType.NumOut()
	if numOut == 0 || numOut > 2 {
		return nil, fmt.Errorf("constructor must return T or (T, error), got %d return values", numOut)
	}
	returnsError := false
	if numOut == 2 {
		if fnType.Out(1) != errorType {
			return nil, fmt.Errorf("constructor's second return value must be error, got %v", fnType.Out(1))
		}
		returnsError = true
	}

	params := make([]reflect.Type, fnType.NumIn())
	for i := range params {
		params[i] = fnType.In(i)
	}

	return &constructor{
		fn:           fnValue,
		params:       params,
		result:       fnType.Out(0),
		returnsError: returnsError,
		preferred:    preferred,
	}, nil
}

// invoke calls the constructor. Errors returned by the constructor body are passed through untouched.
func (c *constructor) invoke(args []reflect.Value) (reflect.Value, error) {
	results := c.fn.Call(args)
	if c.returnsError && !results[1].IsNil() {
		return reflect.Value{}, results[1].Interface().(error)
	}
	return results[0], nil
}

// catalog maps implementation types to their declared constructors, in declaration order.
type catalog struct {
	mu    sync.RWMutex
	ctors map[reflect.Type][]*constructor
}

func newCatalog() *catalog {
	return &catalog{ctors: make(map[reflect.Type][]*constructor)}
}

func (c *catalog) add(ctor *constructor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctors[ctor.result] = append(c.ctors[ctor.result], ctor)
}

func (c *catalog) lookup(impl reflect.Type) []*constructor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctors[impl]
}

// selectConstructor picks the first preferred constructor, otherwise the widest one.
// Among equal arities the one declared last wins. It returns nil when the type
// declares no constructors.
func selectConstructor(ctors []*constructor) *constructor {
	for _, c := range ctors {
		if c.preferred {
			return c
		}
	}

	var best *constructor
	for _, c := range ctors {
		if best == nil || len(c.params) >= len(best.params) {
			best = c
		}
	}
	return best
}

// zeroConstruct stands in for the implicit parameterless constructor.
func zeroConstruct(impl reflect.Type) reflect.Value {
	if impl.Kind() == reflect.Ptr {
		return reflect.New(impl.Elem())
	}
	return reflect.New(impl).Elem()
}

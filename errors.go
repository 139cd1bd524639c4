package ioc

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Sentinel errors matched through errors.Is against the typed errors below.
var (
	ErrNotAssignable      = errors.New("implementation not assignable to contract")
	ErrAlreadyRegistered  = errors.New("contract already registered")
	ErrInvalidConstructor = errors.New("invalid constructor")
	ErrDefaultInitialized = errors.New("default registry already initialized")
)

// Reason classifies a registration failure.
type Reason string

// Registration failure reasons
const (
	ReasonNotAssignable      Reason = "not assignable"
	ReasonAlreadyRegistered  Reason = "already registered"
	ReasonInvalidConstructor Reason = "invalid constructor"
)

// RegistrationError is returned by registration calls. It is never returned by resolution.
type RegistrationError struct {
	Contract       reflect.Type
	Implementation reflect.Type
	Reason         Reason
	Detail         string
}

func (e *RegistrationError) Error() string {
	msg := fmt.Sprintf("registration failed for contract %s (implementation %s): %s",
		typeName(e.Contract), typeName(e.Implementation), e.Reason)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is reports whether target is the sentinel matching the error's reason.
func (e *RegistrationError) Is(target error) bool {
	switch e.Reason {
	case ReasonNotAssignable:
		return target == ErrNotAssignable
	case ReasonAlreadyRegistered:
		return target == ErrAlreadyRegistered
	case ReasonInvalidConstructor:
		return target == ErrInvalidConstructor
	}
	return false
}

// CircularDependencyError is returned when a contract is requested again while
// its own construction is still in progress on the same execution identity.
type CircularDependencyError struct {
	Path []reflect.Type
}

func (e *CircularDependencyError) Error() string {
	names := make([]string, len(e.Path))
	for i, t := range e.Path {
		names[i] = typeName(t)
	}
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(names, " -> "))
}

// UnresolvedDependencyError is returned in strict mode when a constructor parameter
// has no registration.
type UnresolvedDependencyError struct {
	Implementation reflect.Type
	Parameter      reflect.Type
	Index          int
}

func (e *UnresolvedDependencyError) Error() string {
	return fmt.Sprintf("no registration for parameter %d (%s) of %s constructor",
		e.Index, typeName(e.Parameter), typeName(e.Implementation))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

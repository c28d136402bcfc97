// Package formatter holds the user formatting rules consulted by the encoder.
//
// A formatter turns a value into a template and a list of fields.
// The encoder emits them as a custom format group, and an observer substitutes the fields
// into the template's {} and {N} placeholders.
package formatter

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
)

var (
	// ErrAlreadyRegistered is returned when a type already has a formatter.
	ErrAlreadyRegistered = errors.New("formatter already registered")

	// ErrFrozen is returned when registering with a registry that is in use by a printer.
	ErrFrozen = errors.New("registry is frozen")
)

// Func formats a value as a template and the fields substituted into it.
type Func func(v any) (template string, fields []any)

// Formattable is implemented by types that format themselves.
// Registered formatters take precedence over it.
type Formattable interface {
	FormatCTP() (template string, fields []any)
}

var formattableType = reflect.TypeOf((*Formattable)(nil)).Elem()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[reflect.Type]Func),
	}
}

// Registry maps types to at most one formatter each.
// It is safe for concurrent use.
type Registry struct {
	mutex  sync.RWMutex
	funcs  map[reflect.Type]Func
	frozen bool
}

// Register registers fn as the formatter for typ.
// typ is either a reflect.Type or a value of the type.
func (r *Registry) Register(typ any, fn Func) error {
	ty, ok := typ.(reflect.Type)
	if !ok {
		ty = reflect.TypeOf(typ)
	}
	if ty == nil {
		return fmt.Errorf("cannot register formatter for nil type")
	}
	if fn == nil {
		return fmt.Errorf("nil formatter for %v", ty)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: registering %v", ErrFrozen, ty)
	}
	if _, ok := r.funcs[ty]; ok {
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, ty)
	}

	r.funcs[ty] = fn
	return nil
}

// Register registers a typed formatter for T with r.
func Register[T any](r *Registry, fn func(T) (string, []any)) error {
	if fn == nil {
		return r.Register(reflect.TypeOf((*T)(nil)).Elem(), nil)
	}
	return r.Register(reflect.TypeOf((*T)(nil)).Elem(), func(v any) (string, []any) {
		return fn(v.(T))
	})
}

// Lookup returns the formatter for ty.
// Explicit registrations are consulted first, then types implementing Formattable.
func (r *Registry) Lookup(ty reflect.Type) (Func, bool) {
	if ty == nil {
		return nil, false
	}

	r.mutex.RLock()
	fn, ok := r.funcs[ty]
	r.mutex.RUnlock()
	if ok {
		return fn, true
	}

	if ty.Kind() != reflect.Interface && ty.Implements(formattableType) {
		return func(v any) (string, []any) {
			return v.(Formattable).FormatCTP()
		}, true
	}

	return nil, false
}

// Freeze stops further registrations.
func (r *Registry) Freeze() {
	r.mutex.Lock()
	r.frozen = true
	r.mutex.Unlock()
}

// Frozen returns true if Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.frozen
}

// Types returns the explicitly registered types, sorted by name.
func (r *Registry) Types() []reflect.Type {
	r.mutex.RLock()
	types := make([]reflect.Type, 0, len(r.funcs))
	for ty := range r.funcs {
		types = append(types, ty)
	}
	r.mutex.RUnlock()

	sort.Slice(types, func(i, j int) bool {
		return types[i].String() < types[j].String()
	})
	return types
}

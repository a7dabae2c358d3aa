package enum

import (
	"fmt"
	"reflect"
	"sync"
)

var (
	enumManager = map[reflect.Type]any{}
	mu          sync.RWMutex
)

type enum[T ~string] struct {
	values []T
	toEnum map[string]T
}

// New registers value as a member of its enum type and returns it unchanged. It is intended to be
// used in package-level var blocks.
func New[T ~string](value T) T {
	mu.Lock()
	defer mu.Unlock()

	t := reflect.TypeOf(value)
	e, ok := enumManager[t].(*enum[T])
	if !ok {
		e = &enum[T]{toEnum: make(map[string]T)}
		enumManager[t] = e
	}

	if _, ok := e.toEnum[string(value)]; !ok {
		e.values = append(e.values, value)
	}
	e.toEnum[string(value)] = value
	return value
}

func ToEnum[T ~string](s string) (T, error) {
	mu.RLock()
	defer mu.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return defaultT, fmt.Errorf("not found enum type %T", defaultT)
	}

	t, ok := e.toEnum[s]
	if !ok {
		return defaultT, fmt.Errorf("not found value %s in enum %T", s, defaultT)
	}

	return t, nil
}

// Values returns all registered members of the enum type in registration order.
func Values[T ~string]() []T {
	mu.RLock()
	defer mu.RUnlock()

	var defaultT T
	e, ok := enumManager[reflect.TypeOf(defaultT)].(*enum[T])
	if !ok {
		return nil
	}

	return append([]T(nil), e.values...)
}

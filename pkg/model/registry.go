package model

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownType is returned when no constructor is registered under a model name.
var ErrUnknownType = errors.New("model: unknown model type")

// Constructor builds a model of one type from its owning client and attributes.
type Constructor func(client Client, attrs map[string]Value) Object

var registry = map[string]Constructor{
	"model": func(c Client, attrs map[string]Value) Object { return New(c, attrs) },
	"access": func(c Client, attrs map[string]Value) Object {
		return NewAccess(c, attrs)
	},
	"user": func(c Client, attrs map[string]Value) Object { return NewUser(c, attrs) },
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, bool) {
	ctor, ok := registry[name]
	return ctor, ok
}

// Names returns the registered model type names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build wraps a decoded JSON object in the model type registered under name.
func Build(name string, client Client, v Value) (Object, error) {
	ctor, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, name)
	}
	if v.Kind() != KindObject {
		return nil, fmt.Errorf("%w: got %s", ErrNotObject, v.Kind())
	}
	return ctor(client, v.obj), nil
}

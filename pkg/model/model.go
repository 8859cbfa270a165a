// Package model wraps decoded JSON objects in immutable, read-only models.
//
// A Model is an attribute bag: the members of one JSON object plus a reference
// to the client that fetched it. Typed models (Access, User) embed Model and add
// named accessors over well-known attributes.
package model

import (
	"context"
	"errors"
	"net/url"

	json "github.com/goccy/go-json"

	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
)

// ErrNotObject is returned when a model is built from a JSON value that is not an object.
var ErrNotObject = errors.New("model: JSON value is not an object")

// Client is the owner of a model. Models keep it so callers can issue
// follow-up requests; the model never calls it itself.
type Client interface {
	JSON(ctx context.Context, verb, path string, params url.Values) (Value, error)
}

// Object is implemented by every model type.
type Object interface {
	TypeName() string
	Client() Client
	Attributes() map[string]Value
	AttributeExists(name string) bool
	Get(name string) (Value, bool)
}

// Model is an immutable wrapper around the members of a JSON object.
type Model struct {
	typeName string
	client   Client
	attrs    map[string]Value
}

var _ Object = (*Model)(nil)

// New returns a generic model holding a copy of attrs.
func New(client Client, attrs map[string]Value) *Model {
	m := newModel("model", client, attrs)
	return &m
}

func newModel(typeName string, client Client, attrs map[string]Value) Model {
	return Model{
		typeName: typeName,
		client:   client,
		attrs:    copyObject(attrs),
	}
}

// TypeName returns the registry name of the model type.
func (m *Model) TypeName() string { return m.typeName }

// Client returns the client the model was fetched with. It may be nil.
func (m *Model) Client() Client { return m.client }

// Attributes returns a copy of the attribute mapping.
func (m *Model) Attributes() map[string]Value { return copyObject(m.attrs) }

// AttributeExists reports whether the attribute is present, even when its value is null.
func (m *Model) AttributeExists(name string) bool {
	_, ok := m.attrs[name]
	return ok
}

// Get returns the attribute and whether it is present. A present null
// attribute returns a null Value and true.
func (m *Model) Get(name string) (Value, bool) {
	v, ok := m.attrs[name]
	return v, ok
}

// Attribute returns the attribute or an *errors.AttributeError when it is absent.
func (m *Model) Attribute(name string) (Value, error) {
	v, ok := m.attrs[name]
	if !ok {
		return Value{}, &pkgerrs.AttributeError{Model: m.typeName, Name: name}
	}
	return v, nil
}

// MarshalJSON encodes exactly the attribute mapping.
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(ObjectValue(m.attrs).Interface())
}

// stringAttr returns a string attribute or "" when it is absent or not a string.
func (m *Model) stringAttr(name string) string {
	v, ok := m.attrs[name]
	if !ok {
		return ""
	}
	s, _ := v.StringOK()
	return s
}

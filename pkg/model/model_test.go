package model

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrs "github.com/jamesprial/go-redd/pkg/errors"
)

type stubClient struct{}

func (stubClient) JSON(context.Context, string, string, url.Values) (Value, error) {
	return Value{}, nil
}

func fooBar() map[string]Value {
	return map[string]Value{
		"foo":  StringValue("bar"),
		"one":  NumberValue(1),
		"none": {},
	}
}

func TestModel_Attributes(t *testing.T) {
	client := stubClient{}
	m := New(client, fooBar())

	assert.Equal(t, "model", m.TypeName())
	assert.Equal(t, client, m.Client())

	assert.True(t, m.AttributeExists("foo"))
	assert.False(t, m.AttributeExists("missing"))

	foo, err := m.Attribute("foo")
	require.NoError(t, err)
	assert.Equal(t, "bar", foo.String())

	one, ok := m.Get("one")
	require.True(t, ok)
	n, _ := one.Int()
	assert.Equal(t, int64(1), n)
}

func TestModel_MissingAttributeIsDistinctFromNull(t *testing.T) {
	m := New(nil, fooBar())

	none, err := m.Attribute("none")
	require.NoError(t, err, "present null attribute must not be an error")
	assert.True(t, none.IsNull())

	_, err = m.Attribute("missing")
	require.Error(t, err)

	var attrErr *pkgerrs.AttributeError
	require.True(t, errors.As(err, &attrErr))
	assert.Equal(t, "missing", attrErr.Name)
	assert.Equal(t, "model", attrErr.Model)

	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestModel_IsImmutable(t *testing.T) {
	attrs := fooBar()
	m := New(nil, attrs)

	attrs["foo"] = StringValue("changed")
	attrs["extra"] = BoolValue(true)

	foo, _ := m.Get("foo")
	assert.Equal(t, "bar", foo.String())
	assert.False(t, m.AttributeExists("extra"))

	out := m.Attributes()
	out["foo"] = StringValue("changed again")
	foo, _ = m.Get("foo")
	assert.Equal(t, "bar", foo.String())
}

func TestModel_MarshalJSON(t *testing.T) {
	m := New(nil, map[string]Value{"foo": StringValue("bar"), "one": NumberValue(1)})

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"foo":"bar","one":1}`, string(data))
}

func TestUser(t *testing.T) {
	u := NewUser(nil, map[string]Value{"name": StringValue("Mustermind")})
	assert.Equal(t, "Mustermind", u.String())
	assert.Equal(t, "Mustermind", u.Name())
	assert.Equal(t, "user", u.TypeName())

	anonymous := NewUser(nil, nil)
	assert.Equal(t, "", anonymous.String())
}

func TestBuild(t *testing.T) {
	v := MustValueOf(map[string]any{"name": "Mustermind"})

	obj, err := Build("user", stubClient{}, v)
	require.NoError(t, err)
	user, ok := obj.(*User)
	require.True(t, ok, "expected *User, got %T", obj)
	assert.Equal(t, "Mustermind", user.String())

	obj, err = Build("access", nil, MustValueOf(map[string]any{"access_token": "tok"}))
	require.NoError(t, err)
	access, ok := obj.(*Access)
	require.True(t, ok)
	assert.Equal(t, "tok", access.AccessToken())

	_, err = Build("subreddit", nil, v)
	assert.ErrorContains(t, err, "unknown model type")

	_, err = Build("user", nil, MustValueOf([]any{"x"}))
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"access", "model", "user"}, Names())
	_, ok := Lookup("user")
	assert.True(t, ok)
}

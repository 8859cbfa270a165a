package model

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies which JSON type a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is an immutable decoded JSON value. The zero Value is JSON null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  map[string]Value
	arr  []Value
}

// StringValue returns a Value holding s.
func StringValue(s string) Value { return Value{kind: KindString, str: s} }

// NumberValue returns a Value holding n.
func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolValue returns a Value holding b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// ObjectValue returns a Value holding a copy of m.
func ObjectValue(m map[string]Value) Value {
	return Value{kind: KindObject, obj: copyObject(m)}
}

// ArrayValue returns a Value holding a copy of a.
func ArrayValue(a []Value) Value {
	return Value{kind: KindArray, arr: append([]Value(nil), a...)}
}

// ValueOf converts the output of a generic JSON decode (nil, string, float64,
// bool, map[string]any, []any) into a Value. Integer Go types are
// accepted for convenience when building fixtures.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return t, nil
	case string:
		return StringValue(t), nil
	case bool:
		return BoolValue(t), nil
	case float64:
		return NumberValue(t), nil
	case float32:
		return NumberValue(float64(t)), nil
	case int:
		return NumberValue(float64(t)), nil
	case int64:
		return NumberValue(float64(t)), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, raw := range t {
			val, err := ValueOf(raw)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = val
		}
		return Value{kind: KindObject, obj: obj}, nil
	case []any:
		arr := make([]Value, 0, len(t))
		for i, raw := range t {
			val, err := ValueOf(raw)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			arr = append(arr, val)
		}
		return Value{kind: KindArray, arr: arr}, nil
	default:
		return Value{}, fmt.Errorf("unsupported JSON value of type %T", v)
	}
}

// MustValueOf is like ValueOf but panics on unsupported input.
func MustValueOf(v any) Value {
	val, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return val
}

// ErrEmptyDocument is returned by Decode for a body with no JSON in it.
var ErrEmptyDocument = errors.New("model: empty JSON document")

// Decode parses a JSON document into a Value.
func Decode(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, ErrEmptyDocument
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Value{}, err
	}
	return ValueOf(raw)
}

// Kind returns the JSON type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the string held by v. Other kinds are rendered as JSON text.
func (v Value) String() string {
	if v.kind == KindString {
		return v.str
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

// StringOK returns the string held by v and whether v is a string.
func (v Value) StringOK() (string, bool) {
	return v.str, v.kind == KindString
}

// Float returns the number held by v and whether v is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Int returns the number held by v truncated to an int64. The second result is
// false when v is not a number or is not integral.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber || v.num != math.Trunc(v.num) {
		return 0, false
	}
	return int64(v.num), true
}

// Bool returns the boolean held by v and whether v is a boolean.
func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Map returns a copy of the members of an object value, or nil.
func (v Value) Map() map[string]Value {
	if v.kind != KindObject {
		return nil
	}
	return copyObject(v.obj)
}

// Slice returns a copy of the elements of an array value, or nil.
func (v Value) Slice() []Value {
	if v.kind != KindArray {
		return nil
	}
	return append([]Value(nil), v.arr...)
}

// Len returns the number of members or elements of an object or array value.
func (v Value) Len() int {
	switch v.kind {
	case KindObject:
		return len(v.obj)
	case KindArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Get returns the member key of an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	member, ok := v.obj[key]
	return member, ok
}

// Index returns element i of an array value.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Interface converts v back into plain Go values (nil, string, float64, bool,
// map[string]any, []any).
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		m := make(map[string]any, len(v.obj))
		for k, member := range v.obj {
			m[k] = member.Interface()
		}
		return m
	case KindArray:
		a := make([]any, len(v.arr))
		for i, elem := range v.arr {
			a[i] = elem.Interface()
		}
		return a
	default:
		return nil
	}
}

// Equal reports whether v and other hold the same JSON value.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindBool:
		return v.b == other.b
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, member := range v.obj {
			o, ok := other.obj[k]
			if !ok || !member.Equal(o) {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// MarshalJSON encodes v as JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes JSON into v.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// Keys returns the member names of an object value in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyObject(m map[string]Value) map[string]Value {
	if m == nil {
		return map[string]Value{}
	}
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Package rawdoc holds the generic, order-preserving value tree that protocol
// and version documents are decoded into before type resolution.
package rawdoc

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a decoded document node. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	s    string // string contents, or the literal text of a number
	arr  []Value
	obj  []Member
}

// Member is one key/value entry of an object. Objects keep document order.
type Member struct {
	Key   string
	Value Value
}

func Null() Value                  { return Value{} }
func Bool(b bool) Value            { return Value{kind: KindBool, b: b} }
func String(s string) Value        { return Value{kind: KindString, s: s} }
func Array(elems ...Value) Value   { return Value{kind: KindArray, arr: elems} }
func Object(mems ...Member) Value  { return Value{kind: KindObject, obj: mems} }
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// Number builds a number from its literal text, e.g. "42" or "0x1a".
func Number(literal string) Value { return Value{kind: KindNumber, s: literal} }

// Int builds an integral number.
func Int(n int64) Value { return Number(strconv.FormatInt(n, 10)) }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

func (v Value) AsObject() ([]Member, bool) {
	return v.obj, v.kind == KindObject
}

// AsInt returns the value of an integral number. Hex literals (as produced by
// YAML documents) are accepted.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if n, err := strconv.ParseInt(v.s, 10, 64); err == nil {
		return n, true
	}
	n, err := strconv.ParseInt(v.s, 0, 64)
	return n, err == nil
}

// Get returns the first member of an object named key.
func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.obj {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

// Lookup is Get returning a pointer into the document instead of a copy.
func (v Value) Lookup(key string) (*Value, bool) {
	for i := range v.obj {
		if v.obj[i].Key == key {
			return &v.obj[i].Value, true
		}
	}
	return nil, false
}

// Pair unpacks the `[$tag, $payload]` shape used throughout protocol.json.
func (v Value) Pair() (tag string, payload Value, ok bool) {
	if v.kind != KindArray || len(v.arr) != 2 {
		return "", Value{}, false
	}
	tag, ok = v.arr[0].AsString()
	if !ok {
		return "", Value{}, false
	}
	return tag, v.arr[1], true
}

// PairRef is Pair returning a pointer to the payload inside the document.
func (v Value) PairRef() (tag string, payload *Value, ok bool) {
	if v.kind != KindArray || len(v.arr) != 2 {
		return "", nil, false
	}
	tag, ok = v.arr[0].AsString()
	if !ok {
		return "", nil, false
	}
	return tag, &v.arr[1], true
}

// PairOf returns the payload of a `[tag, payload]` pair whose tag equals want.
func (v Value) PairOf(want string) (Value, bool) {
	tag, payload, ok := v.Pair()
	if !ok || tag != want {
		return Value{}, false
	}
	return payload, true
}

// MarshalJSON renders the value as compact JSON, keeping object order.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) appendJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(v.s)
	case KindString:
		s, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(s)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := e.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(m.Key)
			if err != nil {
				return err
			}
			buf.Write(k)
			buf.WriteByte(':')
			if err := m.Value.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// String renders the value as compact JSON. It is used in error trails.
func (v Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return "<" + v.kind.String() + ">"
	}
	return string(b)
}

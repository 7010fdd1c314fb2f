// Package canon holds an order-preserving JSON tree and the canonical form
// used for display: object keys sorted at every level, arrays untouched.
package canon

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// Kind identifies the JSON type of a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Value is a JSON value. Numbers keep their literal text so rendering never
// changes precision or notation.
type Value struct {
	Kind    Kind
	Bool    bool
	Text    string   // Number literal or decoded String
	Items   []Value  // Array elements
	Members []Member // Object members in document order
}

// Member is a single object entry.
type Member struct {
	Key   string
	Value Value
}

// MaxDepth is the deepest array/object nesting Parse accepts.
const MaxDepth = 128

// ErrTooDeep is returned when a document nests deeper than MaxDepth.
var ErrTooDeep = fmt.Errorf("nesting exceeds %d levels", MaxDepth)

// Parse decodes exactly one JSON document. Trailing non-whitespace is an error.
// When an object repeats a key, the last value wins.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("trailing data after JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return Value{Kind: Null}, nil
	case bool:
		return Value{Kind: Bool, Bool: t}, nil
	case json.Number:
		return Value{Kind: Number, Text: t.String()}, nil
	case string:
		return Value{Kind: String, Text: t}, nil
	case json.Delim:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}
		switch t {
		case '[':
			return parseArray(dec, depth+1)
		case '{':
			return parseObject(dec, depth+1)
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func parseArray(dec *json.Decoder, depth int) (Value, error) {
	v := Value{Kind: Array, Items: []Value{}}
	for dec.More() {
		item, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.Items = append(v.Items, item)
	}
	if _, err := dec.Token(); err != nil { // ']'
		return Value{}, err
	}
	return v, nil
}

func parseObject(dec *json.Decoder, depth int) (Value, error) {
	v := Value{Kind: Object, Members: []Member{}}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("object key is %T, not string", tok)
		}
		val, err := parseValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		if i, dup := index[key]; dup {
			v.Members[i].Value = val
			continue
		}
		index[key] = len(v.Members)
		v.Members = append(v.Members, Member{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil { // '}'
		return Value{}, err
	}
	return v, nil
}

// Sort returns a new tree with object keys in lexicographic byte order at
// every level. Arrays keep their order and scalars are returned unchanged.
// v is not modified.
func Sort(v Value) Value {
	switch v.Kind {
	case Object:
		members := make([]Member, len(v.Members))
		for i, m := range v.Members {
			members[i] = Member{Key: m.Key, Value: Sort(m.Value)}
		}
		slices.SortStableFunc(members, func(a, b Member) int {
			return strings.Compare(a.Key, b.Key)
		})
		return Value{Kind: Object, Members: members}
	case Array:
		items := make([]Value, len(v.Items))
		for i, item := range v.Items {
			items[i] = Sort(item)
		}
		return Value{Kind: Array, Items: items}
	default:
		return v
	}
}

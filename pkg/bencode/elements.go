package bencode

import (
	"sort"
	"strconv"
	"strings"
)

// Value is a single element of a decoded bencode tree.
type Value interface {
	String() string
	Encode() string
}

// String is a bencode byte string. It may hold arbitrary binary data,
// not only printable text.
type String string

func (v String) String() string {
	return string(v)
}

func (v String) Encode() string {
	return strconv.Itoa(len(v)) + ":" + string(v)
}

// Int is a bencode integer.
type Int int64

func (v Int) String() string {
	return strconv.FormatInt(int64(v), 10)
}

func (v Int) Encode() string {
	return "i" + strconv.FormatInt(int64(v), 10) + "e"
}

// List is an ordered bencode list.
type List []Value

func (v List) String() string {
	parts := make([]string, len(v))
	for i, el := range v {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v List) Encode() string {
	var sb strings.Builder
	sb.WriteByte('l')
	for _, el := range v {
		sb.WriteString(el.Encode())
	}
	sb.WriteByte('e')
	return sb.String()
}

// Dict is a bencode dictionary with string keys.
type Dict map[string]Value

// Value returns the element stored under key or nil.
func (v Dict) Value(key string) Value {
	return v[key]
}

func (v Dict) String() string {
	keys := v.sortedKeys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + v[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Encode renders the dictionary with keys in lexicographic order, as the
// bencode canonical form requires.
func (v Dict) Encode() string {
	var sb strings.Builder
	sb.WriteByte('d')
	for _, k := range v.sortedKeys() {
		sb.WriteString(String(k).Encode())
		sb.WriteString(v[k].Encode())
	}
	sb.WriteByte('e')
	return sb.String()
}

func (v Dict) sortedKeys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package icon

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Attributes is an ordered set of SVG attributes.
//
// The zero value is an empty set. Attributes is a value type: every method that
// changes something returns a new set and leaves the receiver untouched.
type Attributes struct {
	names  []string
	values map[string]string
}

// NewAttributes builds a set from name/value pairs. A trailing odd name is
// ignored. Later duplicates overwrite earlier values in place.
func NewAttributes(pairs ...string) Attributes {
	var a Attributes
	for i := 0; i+1 < len(pairs); i += 2 {
		a = a.With(pairs[i], pairs[i+1])
	}
	return a
}

// AttributesFromMap builds a set from m with names in sorted order.
func AttributesFromMap(m map[string]string) Attributes {
	a := Attributes{
		names:  slices.Sorted(maps.Keys(m)),
		values: make(map[string]string, len(m)),
	}
	maps.Copy(a.values, m)
	return a
}

// Len returns the number of attributes.
func (a Attributes) Len() int { return len(a.names) }

// Get returns the value for name.
func (a Attributes) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Value returns the value for name or "".
func (a Attributes) Value(name string) string {
	return a.values[name]
}

// Has reports whether name is set.
func (a Attributes) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Names returns the attribute names in order.
func (a Attributes) Names() []string {
	return slices.Clone(a.names)
}

// All iterates over name/value pairs in order.
func (a Attributes) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, n := range a.names {
			if !yield(n, a.values[n]) {
				return
			}
		}
	}
}

// Map returns a copy of the attributes as a map.
func (a Attributes) Map() map[string]string {
	return maps.Clone(a.values)
}

// Equal reports whether a and b hold the same pairs in the same order.
func (a Attributes) Equal(b Attributes) bool {
	return slices.Equal(a.names, b.names) && maps.Equal(a.values, b.values)
}

// With returns a copy with name set to value. Existing names keep their
// position; new names are appended.
func (a Attributes) With(name, value string) Attributes {
	out := a.clone()
	if _, ok := out.values[name]; !ok {
		out.names = append(out.names, name)
	}
	out.values[name] = value
	return out
}

// Without returns a copy with name removed.
func (a Attributes) Without(name string) Attributes {
	if !a.Has(name) {
		return a
	}
	out := a.clone()
	delete(out.values, name)
	out.names = slices.DeleteFunc(out.names, func(n string) bool { return n == name })
	return out
}

// Merge returns a copy with every attribute of b applied over a. The class
// attribute is concatenated instead of replaced.
func (a Attributes) Merge(b Attributes) Attributes {
	if b.Len() == 0 {
		return a
	}
	out := a.clone()
	for name, value := range b.All() {
		if name == "class" {
			if prev, ok := out.values["class"]; ok {
				value = joinClass(prev, value)
			}
		}
		if _, ok := out.values[name]; !ok {
			out.names = append(out.names, name)
		}
		out.values[name] = value
	}
	return out
}

func (a Attributes) clone() Attributes {
	out := Attributes{
		names:  slices.Clone(a.names),
		values: make(map[string]string, len(a.names)+1),
	}
	maps.Copy(out.values, a.values)
	return out
}

func joinClass(a, b string) string {
	return strings.TrimSpace(strings.TrimSpace(a) + " " + strings.TrimSpace(b))
}

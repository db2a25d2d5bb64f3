// Package symtab models the pre-built symbol index that schemaflow's static
// analysis runs against. The index is a read-only table of declared classes,
// their supertype chains, and interface lists; type references additionally
// carry generic parameterizations. Embedders populate a Table from whatever
// type-metadata facility their build produces; the analysis never parses
// source text.
package symtab

import "sort"

// RefKind distinguishes plain class references from parameterized ones.
type RefKind int

const (
	// KindClass is a reference to a plain declared type.
	KindClass RefKind = iota
	// KindParameterized is a generic type applied to one or more arguments,
	// for example an emitter or stream wrapping a payload type.
	KindParameterized
)

// UniversalRoot is the supertype every chain terminates at. Walks over the
// superclass chain stop here without matching it against payload markers.
const UniversalRoot = "any"

// TypeRef describes a declared type reference: a kind, a fully qualified
// name, and, for parameterized references, the ordered type arguments.
type TypeRef struct {
	Kind RefKind
	Name string
	Args []TypeRef
}

// ClassRef returns a plain class reference.
func ClassRef(name string) TypeRef {
	return TypeRef{Kind: KindClass, Name: name}
}

// ParameterizedRef returns a generic type reference with the given arguments.
func ParameterizedRef(name string, args ...TypeRef) TypeRef {
	return TypeRef{Kind: KindParameterized, Name: name, Args: args}
}

// IsZero reports whether the reference is the zero value.
func (r TypeRef) IsZero() bool {
	return r.Kind == KindClass && r.Name == "" && len(r.Args) == 0
}

// FirstArgument returns the first type argument of a parameterized reference.
// It returns false for plain classes and for parameterized references with no
// arguments.
func (r TypeRef) FirstArgument() (TypeRef, bool) {
	if r.Kind != KindParameterized || len(r.Args) == 0 {
		return TypeRef{}, false
	}
	return r.Args[0], true
}

// ClassKind distinguishes classes from interfaces in the index.
type ClassKind int

const (
	ClassKindClass ClassKind = iota
	ClassKindInterface
)

// ClassInfo is one entry of the symbol index: a declared type, its direct
// superclass (empty when it sits directly under the universal root), and the
// interfaces it declares directly.
type ClassInfo struct {
	Name       string
	Kind       ClassKind
	Superclass string
	Interfaces []string
}

// Index is the query surface the classifier and scanner consume. Absent
// lookups are a valid result, not an error.
type Index interface {
	ClassByName(name string) (ClassInfo, bool)
}

// Table is an in-memory Index. It is safe for concurrent reads once
// populated; population is expected to happen before analysis starts.
type Table struct {
	classes map[string]ClassInfo
}

// NewTable returns an empty symbol table.
func NewTable() *Table {
	return &Table{classes: make(map[string]ClassInfo)}
}

// Add inserts or replaces a class entry and returns the table for chaining.
func (t *Table) Add(info ClassInfo) *Table {
	t.classes[info.Name] = info
	return t
}

// AddClass is a convenience for Add with ClassKindClass.
func (t *Table) AddClass(name, superclass string, interfaces ...string) *Table {
	return t.Add(ClassInfo{
		Name:       name,
		Kind:       ClassKindClass,
		Superclass: superclass,
		Interfaces: interfaces,
	})
}

// AddInterface is a convenience for Add with ClassKindInterface.
func (t *Table) AddInterface(name string, interfaces ...string) *Table {
	return t.Add(ClassInfo{
		Name:       name,
		Kind:       ClassKindInterface,
		Interfaces: interfaces,
	})
}

// ClassByName implements Index.
func (t *Table) ClassByName(name string) (ClassInfo, bool) {
	info, ok := t.classes[name]
	return info, ok
}

// Names returns the sorted list of declared class names, mainly for
// diagnostics.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

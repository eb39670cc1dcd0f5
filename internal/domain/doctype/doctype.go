// Package doctype holds the schema model: DocTypes, their ordered fields, and modules.
package doctype

import (
	"fmt"
	"sort"
	"strings"
)

// DocType is a named entity-type descriptor with an ordered field list.
type DocType struct {
	name    string
	modules []string
	fields  []Field
}

// New validates and creates a DocType. Field order is the slice order;
// fieldnames must be unique.
func New(name string, modules []string, fields []Field) (DocType, error) {
	if strings.TrimSpace(name) == "" {
		return DocType{}, fmt.Errorf("doctype name is required")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Fieldname()] {
			return DocType{}, fmt.Errorf("doctype %q: duplicate fieldname %q", name, f.Fieldname())
		}
		seen[f.Fieldname()] = true
	}
	return Reconstruct(name, modules, fields), nil
}

// Reconstruct creates a DocType without validation (storage hydration).
func Reconstruct(name string, modules []string, fields []Field) DocType {
	return DocType{
		name:    name,
		modules: dedupeSorted(modules),
		fields:  append([]Field(nil), fields...),
	}
}

// Name returns the DocType name, which is also its graph label.
func (d DocType) Name() string { return d.name }

// Modules returns the sorted module names the DocType belongs to.
func (d DocType) Modules() []string {
	out := make([]string, len(d.modules))
	copy(out, d.modules)
	return out
}

// Fields returns the fields in declared order, never nil.
func (d DocType) Fields() []Field {
	out := make([]Field, len(d.fields))
	copy(out, d.fields)
	return out
}

// FieldOrder returns the fieldnames in declared order.
func (d DocType) FieldOrder() []string {
	out := make([]string, len(d.fields))
	for i, f := range d.fields {
		out[i] = f.Fieldname()
	}
	return out
}

// OrderFields arranges fields by order. Fields missing from order follow,
// sorted by fieldname; names in order without a field are skipped.
func OrderFields(fields []Field, order []string) []Field {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Fieldname()] = f
	}

	out := make([]Field, 0, len(fields))
	placed := make(map[string]bool, len(fields))
	for _, name := range order {
		f, ok := byName[name]
		if !ok || placed[name] {
			continue
		}
		out = append(out, f)
		placed[name] = true
	}

	var rest []Field
	for _, f := range fields {
		if !placed[f.Fieldname()] {
			rest = append(rest, f)
		}
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Fieldname() < rest[j].Fieldname() })
	return append(out, rest...)
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

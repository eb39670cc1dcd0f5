package doctype

import (
	"fmt"
	"strings"
)

// FieldType drives how a field is rendered and what values it holds.
type FieldType string

// The closed set of field types.
const (
	Data       FieldType = "Data"
	Int        FieldType = "Int"
	Float      FieldType = "Float"
	Currency   FieldType = "Currency"
	Select     FieldType = "Select"
	Link       FieldType = "Link"
	Check      FieldType = "Check"
	TextEditor FieldType = "Text Editor"
)

// Valid reports whether t belongs to the closed set.
func (t FieldType) Valid() bool {
	switch t {
	case Data, Int, Float, Currency, Select, Link, Check, TextEditor:
		return true
	}
	return false
}

// Textual reports whether values of t are free or enumerated text.
func (t FieldType) Textual() bool {
	switch t {
	case Data, Select, Link, TextEditor:
		return true
	}
	return false
}

// Spec is the mutable description a Field is built from.
type Spec struct {
	Fieldname   string
	Label       string
	Fieldtype   FieldType
	Options     string
	Description string
	Reqd        bool
	InListView  bool
	Hidden      bool
	ReadOnly    bool
}

// Field is one typed attribute of a DocType (immutable value object).
//
// Reqd is advisory metadata. The document store does not enforce it;
// callers that need required fields must check them before writing.
type Field struct {
	spec Spec
}

// NewField validates s and creates a Field. Label defaults to Fieldname.
func NewField(s Spec) (Field, error) {
	if strings.TrimSpace(s.Fieldname) == "" {
		return Field{}, fmt.Errorf("fieldname is required")
	}
	if !s.Fieldtype.Valid() {
		return Field{}, fmt.Errorf("field %q: unknown fieldtype %q", s.Fieldname, s.Fieldtype)
	}
	if s.Fieldtype == Link && strings.TrimSpace(s.Options) == "" {
		return Field{}, fmt.Errorf("field %q: link fields name their target doctype in options", s.Fieldname)
	}
	return ReconstructField(s), nil
}

// ReconstructField creates a Field without validation (storage hydration).
func ReconstructField(s Spec) Field {
	if s.Label == "" {
		s.Label = s.Fieldname
	}
	return Field{spec: s}
}

// Fieldname returns the document property key.
func (f Field) Fieldname() string { return f.spec.Fieldname }

// Label returns the display name.
func (f Field) Label() string { return f.spec.Label }

// Fieldtype returns the field type.
func (f Field) Fieldtype() FieldType { return f.spec.Fieldtype }

// Options returns Select choices (newline separated) or the Link target.
func (f Field) Options() string { return f.spec.Options }

// Description returns the help text.
func (f Field) Description() string { return f.spec.Description }

// Reqd reports whether the field is required on submit.
func (f Field) Reqd() bool { return f.spec.Reqd }

// InListView reports whether the field is shown in listings.
func (f Field) InListView() bool { return f.spec.InListView }

// Hidden reports whether the field is hidden.
func (f Field) Hidden() bool { return f.spec.Hidden }

// ReadOnly reports whether the field is read-only.
func (f Field) ReadOnly() bool { return f.spec.ReadOnly }

// Spec returns a copy of the field description.
func (f Field) Spec() Spec { return f.spec }

// Choices splits Select options into trimmed, non-empty values.
func (f Field) Choices() []string {
	if f.spec.Fieldtype != Select {
		return nil
	}
	var out []string
	for _, line := range strings.Split(f.spec.Options, "\n") {
		if v := strings.TrimSpace(line); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package schemacache

import "github.com/xdev-exe/cortyx/internal/domain/doctype"

type cachedField struct {
	Fieldname   string `json:"fieldname"`
	Label       string `json:"label"`
	Fieldtype   string `json:"fieldtype"`
	Options     string `json:"options,omitempty"`
	Description string `json:"description,omitempty"`
	Reqd        bool   `json:"reqd,omitempty"`
	InListView  bool   `json:"in_list_view,omitempty"`
	Hidden      bool   `json:"hidden,omitempty"`
	ReadOnly    bool   `json:"read_only,omitempty"`
}

type cachedDocType struct {
	Name    string        `json:"name"`
	Modules []string      `json:"modules"`
	Fields  []cachedField `json:"fields"`
}

func fromDomain(dt doctype.DocType) cachedDocType {
	fields := dt.Fields()
	out := cachedDocType{Name: dt.Name(), Modules: dt.Modules(), Fields: make([]cachedField, len(fields))}
	for i, f := range fields {
		out.Fields[i] = cachedField{
			Fieldname:   f.Fieldname(),
			Label:       f.Label(),
			Fieldtype:   string(f.Fieldtype()),
			Options:     f.Options(),
			Description: f.Description(),
			Reqd:        f.Reqd(),
			InListView:  f.InListView(),
			Hidden:      f.Hidden(),
			ReadOnly:    f.ReadOnly(),
		}
	}
	return out
}

// toDomain rebuilds the descriptor. Fields are already in field order.
func (c cachedDocType) toDomain() doctype.DocType {
	fields := make([]doctype.Field, len(c.Fields))
	for i, f := range c.Fields {
		fields[i] = doctype.ReconstructField(doctype.Spec{
			Fieldname:   f.Fieldname,
			Label:       f.Label,
			Fieldtype:   doctype.FieldType(f.Fieldtype),
			Options:     f.Options,
			Description: f.Description,
			Reqd:        f.Reqd,
			InListView:  f.InListView,
			Hidden:      f.Hidden,
			ReadOnly:    f.ReadOnly,
		})
	}
	return doctype.Reconstruct(c.Name, c.Modules, fields)
}

type cachedMembership struct {
	DocType string   `json:"doctype"`
	Modules []string `json:"modules"`
}

func membershipsFromDomain(in []doctype.Membership) []cachedMembership {
	out := make([]cachedMembership, len(in))
	for i, m := range in {
		out[i] = cachedMembership{DocType: m.DocType, Modules: m.Modules}
	}
	return out
}

func membershipsToDomain(in []cachedMembership) []doctype.Membership {
	out := make([]doctype.Membership, len(in))
	for i, m := range in {
		out[i] = doctype.Membership{DocType: m.DocType, Modules: m.Modules}
	}
	return out
}

package schema

import (
	"strings"

	"github.com/xdev-exe/cortyx/internal/domain/doctype"
)

// Property keys of a DocField node.
const (
	propFieldname   = "fieldname"
	propLabel       = "label"
	propFieldtype   = "fieldtype"
	propOptions     = "options"
	propDescription = "description"
	propReqd        = "reqd"
	propInListView  = "in_list_view"
	propHidden      = "hidden"
	propReadOnly    = "read_only"
)

// fieldToProps renders a field as DocField properties. Flags are stored as 0/1.
func fieldToProps(f doctype.Field) map[string]any {
	props := map[string]any{
		propFieldname:  f.Fieldname(),
		propLabel:      f.Label(),
		propFieldtype:  string(f.Fieldtype()),
		propReqd:       flag(f.Reqd()),
		propInListView: flag(f.InListView()),
		propHidden:     flag(f.Hidden()),
		propReadOnly:   flag(f.ReadOnly()),
	}
	if f.Options() != "" {
		props[propOptions] = f.Options()
	}
	if f.Description() != "" {
		props[propDescription] = f.Description()
	}
	return props
}

// propsToField hydrates a field from normalized DocField properties.
func propsToField(props map[string]any) doctype.Field {
	return doctype.ReconstructField(doctype.Spec{
		Fieldname:   str(props[propFieldname]),
		Label:       str(props[propLabel]),
		Fieldtype:   doctype.FieldType(str(props[propFieldtype])),
		Options:     str(props[propOptions]),
		Description: str(props[propDescription]),
		Reqd:        truthy(props[propReqd]),
		InListView:  truthy(props[propInListView]),
		Hidden:      truthy(props[propHidden]),
		ReadOnly:    truthy(props[propReadOnly]),
	})
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// truthy accepts the encodings found in stored data: 0/1 numbers, booleans
// and their string forms.
func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes":
			return true
		}
	}
	return false
}

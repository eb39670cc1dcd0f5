// Package document holds the generic document model shared by every DocType.
package document

import (
	"encoding/json"
	"maps"
	"math"
)

// Reserved property keys maintained by the store.
const (
	KeyName     = "name"
	KeyCreation = "creation"
	KeyModified = "modified"
)

// Document is one stored instance of a DocType: a type name, an identifier
// and an open property map. It is the same type for every DocType.
type Document struct {
	docType   string
	name      string
	elementID string
	props     map[string]any
}

// Reconstruct creates a Document from stored node properties.
// When the node has no name property, the store element id stands in.
func Reconstruct(docType, elementID string, props map[string]any) Document {
	p := maps.Clone(props)
	if p == nil {
		p = make(map[string]any)
	}
	name, _ := p[KeyName].(string)
	if name == "" {
		name = elementID
	}
	return Document{docType: docType, name: name, elementID: elementID, props: p}
}

// DocType returns the DocType name the document belongs to.
func (d Document) DocType() string { return d.docType }

// Name returns the public identifier.
func (d Document) Name() string { return d.name }

// ElementID returns the store-assigned element identifier.
func (d Document) ElementID() string { return d.elementID }

// Get returns a property value.
func (d Document) Get(key string) (any, bool) {
	v, ok := d.props[key]
	return v, ok
}

// Properties returns a copy of the property map, including name.
func (d Document) Properties() map[string]any {
	p := maps.Clone(d.props)
	if p == nil {
		p = make(map[string]any)
	}
	p[KeyName] = d.name
	return p
}

// MarshalJSON renders the document as its flat property map.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Properties())
}

// Page is one window of a DocType listing.
type Page struct {
	Data  []Document
	Total int64
}

// Offset returns the number of documents before the 1-based page. ok is
// false when the offset does not fit in an int; no store can hold that many
// documents, so such a page is always past the end.
func Offset(page, pageSize int) (offset int, ok bool) {
	if page < 1 || pageSize < 1 {
		return 0, true
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

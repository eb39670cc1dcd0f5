package cortyx

import (
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	documentuc "github.com/xdev-exe/cortyx/internal/usecase/document"
)

// FieldType defines how a field is rendered and what values it holds.
type FieldType string

// Field type constants.
const (
	FieldData       FieldType = FieldType(doctype.Data)
	FieldInt        FieldType = FieldType(doctype.Int)
	FieldFloat      FieldType = FieldType(doctype.Float)
	FieldCurrency   FieldType = FieldType(doctype.Currency)
	FieldSelect     FieldType = FieldType(doctype.Select)
	FieldLink       FieldType = FieldType(doctype.Link)
	FieldCheck      FieldType = FieldType(doctype.Check)
	FieldTextEditor FieldType = FieldType(doctype.TextEditor)
)

// Field is one typed attribute of a DocType.
type Field struct {
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

// DocType is a named entity type with its modules and ordered fields.
type DocType struct {
	Name    string
	Modules []string
	Fields  []Field
}

// Module groups DocType names.
type Module struct {
	Name         string
	DocTypeNames []string
}

// Document is a flat property map. The "name" key holds its identifier.
type Document map[string]any

// Name returns the document identifier.
func (d Document) Name() string {
	s, _ := d[domdoc.KeyName].(string)
	return s
}

// ListResult is one page of documents.
type ListResult struct {
	Documents  []Document
	Total      int64
	Page       int
	PageSize   int
	TotalPages int64
}

func fromField(f doctype.Field) Field {
	return Field{
		Fieldname:   f.Fieldname(),
		Label:       f.Label(),
		Fieldtype:   FieldType(f.Fieldtype()),
		Options:     f.Options(),
		Description: f.Description(),
		Reqd:        f.Reqd(),
		InListView:  f.InListView(),
		Hidden:      f.Hidden(),
		ReadOnly:    f.ReadOnly(),
	}
}

func fromFields(fields []doctype.Field) []Field {
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = fromField(f)
	}
	return out
}

func toDocType(dt DocType) (doctype.DocType, error) {
	fields := make([]doctype.Field, 0, len(dt.Fields))
	for _, f := range dt.Fields {
		df, err := doctype.NewField(doctype.Spec{
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
		if err != nil {
			return doctype.DocType{}, err //nolint:wrapcheck // caller wraps
		}
		fields = append(fields, df)
	}
	return doctype.New(dt.Name, dt.Modules, fields) //nolint:wrapcheck // caller wraps
}

func fromModules(mods []doctype.Module) []Module {
	out := make([]Module, len(mods))
	for i, m := range mods {
		names := append([]string{}, m.DocTypeNames...)
		out[i] = Module{Name: m.Name, DocTypeNames: names}
	}
	return out
}

func fromDocument(d domdoc.Document) Document {
	return Document(d.Properties())
}

func fromListResult(r documentuc.ListResult) ListResult {
	docs := make([]Document, len(r.Data))
	for i, d := range r.Data {
		docs[i] = fromDocument(d)
	}
	return ListResult{
		Documents:  docs,
		Total:      r.Total,
		Page:       r.Page,
		PageSize:   r.PageSize,
		TotalPages: r.TotalPages,
	}
}

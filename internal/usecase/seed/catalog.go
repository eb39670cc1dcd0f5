package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
)

// Catalog is the on-disk description of DocTypes and their sample documents.
type Catalog struct {
	DocTypes []DocTypeSpec `yaml:"doctypes"`
}

// DocTypeSpec describes one DocType of a catalog file.
type DocTypeSpec struct {
	Name      string           `yaml:"name"`
	Modules   []string         `yaml:"modules"`
	Fields    []FieldSpec      `yaml:"fields"`
	Documents []map[string]any `yaml:"documents"`
}

// FieldSpec describes one field of a catalog file.
type FieldSpec struct {
	Fieldname   string `yaml:"fieldname"`
	Label       string `yaml:"label"`
	Fieldtype   string `yaml:"fieldtype"`
	Options     string `yaml:"options"`
	Description string `yaml:"description"`
	Reqd        bool   `yaml:"reqd"`
	InListView  bool   `yaml:"in_list_view"`
	Hidden      bool   `yaml:"hidden"`
	ReadOnly    bool   `yaml:"read_only"`
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a catalog. Unknown keys are rejected so typos surface early.
func ParseCatalog(data []byte) (Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Catalog{}, fmt.Errorf("%w: parse catalog: %w", domain.ErrInvalidSchema, err)
	}

	seen := make(map[string]struct{}, len(c.DocTypes))
	for _, dt := range c.DocTypes {
		if _, dup := seen[dt.Name]; dup {
			return Catalog{}, fmt.Errorf("%w: doctype %q listed twice", domain.ErrInvalidSchema, dt.Name)
		}
		seen[dt.Name] = struct{}{}
	}
	return c, nil
}

// DocType validates the spec and builds the domain descriptor.
func (s DocTypeSpec) DocType() (doctype.DocType, error) {
	fields := make([]doctype.Field, 0, len(s.Fields))
	for _, fs := range s.Fields {
		f, err := doctype.NewField(doctype.Spec{
			Fieldname:   fs.Fieldname,
			Label:       fs.Label,
			Fieldtype:   doctype.FieldType(fs.Fieldtype),
			Options:     fs.Options,
			Description: fs.Description,
			Reqd:        fs.Reqd,
			InListView:  fs.InListView,
			Hidden:      fs.Hidden,
			ReadOnly:    fs.ReadOnly,
		})
		if err != nil {
			return doctype.DocType{}, fmt.Errorf("%w: doctype %q: %w", domain.ErrInvalidSchema, s.Name, err)
		}
		fields = append(fields, f)
	}

	dt, err := doctype.New(s.Name, s.Modules, fields)
	if err != nil {
		return doctype.DocType{}, fmt.Errorf("%w: doctype %q: %w", domain.ErrInvalidSchema, s.Name, err)
	}
	return dt, nil
}

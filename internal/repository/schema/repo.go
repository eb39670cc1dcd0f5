package schema

import (
	"context"
	"fmt"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/cypher"
)

// Repo implements usecase/schema.Repository over the graph store.
type Repo struct {
	runner graph.Runner
}

// New creates a schema repository.
func New(r graph.Runner) *Repo {
	return &Repo{runner: r}
}

// Exists reports whether a DocType named name is defined.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	st, err := existsStatement(name)
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}
	recs, err := graph.Read(ctx, r.runner, "doctype.exists", st)
	if err != nil {
		return false, fmt.Errorf("doctype %s exists: %w", name, err)
	}
	rec, err := graph.Single(recs)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Bool("exists"), nil
}

// Get returns the DocType with its fields arranged by field_order.
func (r *Repo) Get(ctx context.Context, name string) (doctype.DocType, error) {
	st, err := getStatement(name)
	if err != nil {
		return doctype.DocType{}, fmt.Errorf("build get: %w", err)
	}
	recs, err := graph.Read(ctx, r.runner, "doctype.get", st)
	if err != nil {
		return doctype.DocType{}, fmt.Errorf("doctype %s: %w", name, err)
	}
	rec, err := graph.Single(recs)
	if err != nil {
		return doctype.DocType{}, err
	}
	if rec == nil || !rec.Bool("found") {
		return doctype.DocType{}, fmt.Errorf("%q: %w", name, domain.ErrDocTypeNotFound)
	}

	items, _ := rec["fields"].([]any)
	fields := make([]doctype.Field, 0, len(items))
	for _, it := range items {
		props, ok := it.(map[string]any)
		if !ok {
			continue
		}
		fields = append(fields, propsToField(props))
	}
	fields = doctype.OrderFields(fields, rec.Strings("field_order"))
	return doctype.Reconstruct(name, rec.Strings("modules"), fields), nil
}

// Memberships lists every DocType with its declared modules, sorted by name.
func (r *Repo) Memberships(ctx context.Context) ([]doctype.Membership, error) {
	st, err := membershipsStatement()
	if err != nil {
		return nil, fmt.Errorf("build memberships: %w", err)
	}
	recs, err := graph.Read(ctx, r.runner, "doctype.modules", st)
	if err != nil {
		return nil, fmt.Errorf("list doctypes: %w", err)
	}
	out := make([]doctype.Membership, 0, len(recs))
	for _, rec := range recs {
		name := rec.String("name")
		if name == "" {
			continue
		}
		out = append(out, doctype.Membership{DocType: name, Modules: rec.Strings("modules")})
	}
	return out, nil
}

// Save upserts dt, replacing all of its fields and its field order.
// The name must be usable as a document label.
func (r *Repo) Save(ctx context.Context, dt doctype.DocType) error {
	if _, err := cypher.QuoteIdentifier(dt.Name()); err != nil {
		return fmt.Errorf("doctype %q: %w: %w", dt.Name(), domain.ErrInvalidSchema, err)
	}
	fields := dt.Fields()
	props := make([]map[string]any, len(fields))
	for i, f := range fields {
		props[i] = fieldToProps(f)
	}
	st, err := saveStatement(dt.Name(), dt.Modules(), dt.FieldOrder(), props)
	if err != nil {
		return fmt.Errorf("build save: %w", err)
	}
	if _, err := graph.Write(ctx, r.runner, "doctype.save", st); err != nil {
		return fmt.Errorf("save doctype %s: %w", dt.Name(), err)
	}
	return nil
}

// EnsureConstraints creates the uniqueness constraints the catalog and the
// naming series rely on. Each runs in its own transaction.
func (r *Repo) EnsureConstraints(ctx context.Context) error {
	for _, st := range constraintStatements {
		if _, err := graph.Write(ctx, r.runner, "schema.constraints", st); err != nil {
			return fmt.Errorf("ensure constraints: %w", err)
		}
	}
	return nil
}

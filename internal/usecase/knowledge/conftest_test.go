package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
)

type mockRepo struct {
	entries   map[string]domknow.Entry
	putErr    error
	searchErr error
	hits      []domknow.Hit
	lastQuery struct {
		vector []float32
		module string
		limit  int
	}
	ensured int
	dropped int
	getErr  error
}

func newMockRepo() *mockRepo { return &mockRepo{entries: map[string]domknow.Entry{}} }

func (m *mockRepo) EnsureIndex(context.Context) error {
	m.ensured++
	return nil
}

func (m *mockRepo) DropIndex(context.Context) error {
	m.dropped++
	return nil
}

func (m *mockRepo) Get(_ context.Context, docType, name string) (domknow.Entry, bool, error) {
	if m.getErr != nil {
		return domknow.Entry{}, false, m.getErr
	}
	e, ok := m.entries[domknow.EntryID(docType, name)]
	e.Vector = nil
	return e, ok, nil
}

func (m *mockRepo) Put(_ context.Context, e domknow.Entry) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[e.ID()] = e
	return nil
}

func (m *mockRepo) Remove(_ context.Context, docType, name string) error {
	delete(m.entries, domknow.EntryID(docType, name))
	return nil
}

func (m *mockRepo) Search(_ context.Context, vector []float32, module string, limit int) ([]domknow.Hit, error) {
	m.lastQuery.vector, m.lastQuery.module, m.lastQuery.limit = vector, module, limit
	return m.hits, m.searchErr
}

type mockEmbedder struct {
	texts []string
	err   error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	m.texts = append(m.texts, text)
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

type mockSchemas map[string]doctype.DocType

func (m mockSchemas) GetDocType(_ context.Context, name string) (doctype.DocType, error) {
	dt, ok := m[name]
	if !ok {
		return doctype.DocType{}, domain.ErrDocTypeNotFound
	}
	return dt, nil
}

// pagedDocs serves a fixed document list in pages.
type pagedDocs struct {
	docs  []domdoc.Document
	pages []int
}

func (p *pagedDocs) List(_ context.Context, _ string, page, pageSize int) (domdoc.Page, error) {
	p.pages = append(p.pages, page)
	out := domdoc.Page{Total: int64(len(p.docs))}
	for i := (page - 1) * pageSize; i < len(p.docs) && i < page*pageSize; i++ {
		out.Data = append(out.Data, p.docs[i])
	}
	return out, nil
}

func customerType(t *testing.T) doctype.DocType {
	t.Helper()
	mk := func(s doctype.Spec) doctype.Field {
		f, err := doctype.NewField(s)
		require.NoError(t, err)
		return f
	}
	dt, err := doctype.New("Customer", []string{"Selling", "CRM"}, []doctype.Field{
		mk(doctype.Spec{Fieldname: "customer_name", Label: "Customer Name", Fieldtype: doctype.Data}),
		mk(doctype.Spec{Fieldname: "credit_limit", Label: "Credit Limit", Fieldtype: doctype.Currency}),
		mk(doctype.Spec{Fieldname: "internal_code", Label: "Internal Code", Fieldtype: doctype.Data, Hidden: true}),
		mk(doctype.Spec{Fieldname: "disabled", Label: "Disabled", Fieldtype: doctype.Check}),
		mk(doctype.Spec{Fieldname: "notes", Label: "Notes", Fieldtype: doctype.TextEditor}),
	})
	require.NoError(t, err)
	return dt
}

func customerDoc(name string) domdoc.Document {
	return domdoc.Reconstruct("Customer", "4:x:"+name, map[string]any{
		"name":          name,
		"customer_name": "Acme Corp",
		"credit_limit":  5000.5,
		"internal_code": "X-9",
		"disabled":      int64(0),
		"notes":         "  ",
	})
}

// customerDocWith is customerDoc with one property replaced.
func customerDocWith(name, key string, v any) domdoc.Document {
	props := customerDoc(name).Properties()
	props[key] = v
	return domdoc.Reconstruct("Customer", "4:x:"+name, props)
}

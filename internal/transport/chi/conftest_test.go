package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
	documentuc "github.com/xdev-exe/cortyx/internal/usecase/document"
	healthuc "github.com/xdev-exe/cortyx/internal/usecase/health"
)

type fakeSchema struct {
	fields  map[string][]doctype.Field
	modules []doctype.Module
	err     error
}

func (f *fakeSchema) GetFields(_ context.Context, name string) ([]doctype.Field, error) {
	if f.err != nil {
		return nil, f.err
	}
	fields, ok := f.fields[name]
	if !ok {
		return nil, domain.ErrDocTypeNotFound
	}
	return fields, nil
}

func (f *fakeSchema) GetModules(context.Context) ([]doctype.Module, error) {
	return f.modules, f.err
}

type fakeDocuments struct {
	docs map[string]map[string]domdoc.Document

	lastPage, lastPageSize int
	lastPatch              map[string]any
	err                    error
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: map[string]map[string]domdoc.Document{}}
}

func (f *fakeDocuments) put(docType, name string, props map[string]any) {
	if f.docs[docType] == nil {
		f.docs[docType] = map[string]domdoc.Document{}
	}
	p := map[string]any{"name": name}
	for k, v := range props {
		p[k] = v
	}
	f.docs[docType][name] = domdoc.Reconstruct(docType, "4:test:"+name, p)
}

func (f *fakeDocuments) List(_ context.Context, docType string, page, pageSize int) (documentuc.ListResult, error) {
	f.lastPage, f.lastPageSize = page, pageSize
	if f.err != nil {
		return documentuc.ListResult{}, f.err
	}
	if page < 1 {
		return documentuc.ListResult{}, domain.ErrInvalidPagination
	}
	data := make([]domdoc.Document, 0, len(f.docs[docType]))
	for _, d := range f.docs[docType] {
		data = append(data, d)
	}
	return documentuc.ListResult{
		Data: data, Total: int64(len(data)), Page: page, PageSize: pageSize, TotalPages: 1,
	}, nil
}

func (f *fakeDocuments) Get(_ context.Context, docType, id string) (domdoc.Document, error) {
	if f.err != nil {
		return domdoc.Document{}, f.err
	}
	d, ok := f.docs[docType][id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func (f *fakeDocuments) Create(_ context.Context, docType string, data map[string]any) (domdoc.Document, error) {
	if f.err != nil {
		return domdoc.Document{}, f.err
	}
	name, _ := data["name"].(string)
	if name == "" {
		name = "GEN-001"
	}
	if _, ok := f.docs[docType][name]; ok {
		return domdoc.Document{}, domain.ErrAlreadyExists
	}
	f.put(docType, name, data)
	return f.docs[docType][name], nil
}

func (f *fakeDocuments) Update(_ context.Context, docType, id string, patch map[string]any) (domdoc.Document, error) {
	f.lastPatch = patch
	d, ok := f.docs[docType][id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	props := d.Properties()
	for k, v := range patch {
		props[k] = v
	}
	f.put(docType, id, props)
	return f.docs[docType][id], nil
}

func (f *fakeDocuments) Delete(_ context.Context, docType, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.docs[docType][id]; !ok {
		return false, nil
	}
	delete(f.docs[docType], id)
	return true, nil
}

func (f *fakeDocuments) DefaultPageSize() int { return 20 }

type fakeSearch struct {
	hits  []domknow.Hit
	err   error
	query domknow.Query
}

func (f *fakeSearch) Search(_ context.Context, q domknow.Query) ([]domknow.Hit, error) {
	f.query = q
	return f.hits, f.err
}

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(context.Context) healthuc.Report { return f.report }

type testServer struct {
	schema *fakeSchema
	docs   *fakeDocuments
	search *fakeSearch
	health *fakeHealth
	router http.Handler
}

func newTestServer(t *testing.T, withSearch bool) *testServer {
	t.Helper()

	name := doctype.ReconstructField(doctype.Spec{
		Fieldname: "customer_name", Label: "Customer Name", Fieldtype: doctype.Data, Reqd: true,
	})
	ts := &testServer{
		schema: &fakeSchema{
			fields: map[string][]doctype.Field{
				"Customer": {name},
				"Note":     {},
			},
			modules: []doctype.Module{{Name: "Selling", DocTypeNames: []string{"Customer"}}},
		},
		docs:   newFakeDocuments(),
		search: &fakeSearch{},
		health: &fakeHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentGraph: healthuc.CheckOK},
		}},
	}

	var search SearchService
	if withSearch {
		search = ts.search
	}
	srv := NewServer(ts.schema, ts.docs, search, ts.health, zap.NewNop())
	ts.router = NewRouter(srv, RouterConfig{Logger: zap.NewNop()})
	return ts
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func zapNop() *zap.Logger { return zap.NewNop() }

package seed

import (
	"context"
	"errors"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

type fakeSchema struct {
	saved         []doctype.DocType
	constraintErr error
	saveErr       error
}

func (f *fakeSchema) EnsureConstraints(context.Context) error { return f.constraintErr }

func (f *fakeSchema) SaveDocType(_ context.Context, dt doctype.DocType) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, dt)
	return nil
}

type fakeDocs struct {
	existing  map[string]bool
	created   []map[string]any
	getErr    error
	createErr map[string]error
	seq       int
}

func (f *fakeDocs) Get(_ context.Context, docType, id string) (domdoc.Document, error) {
	if f.getErr != nil {
		return domdoc.Document{}, f.getErr
	}
	if f.existing[docType+"/"+id] {
		return domdoc.Reconstruct(docType, "4:x:1", map[string]any{"name": id}), nil
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

func (f *fakeDocs) Create(_ context.Context, docType string, data map[string]any) (domdoc.Document, error) {
	name, _ := data["name"].(string)
	if err := f.createErr[name]; err != nil {
		return domdoc.Document{}, err
	}
	if name == "" {
		f.seq++
		name = domdoc.FormatName(domdoc.NamePrefix(docType), int64(f.seq))
	}
	f.created = append(f.created, data)
	return domdoc.Reconstruct(docType, "4:x:2", map[string]any{"name": name}), nil
}

var errBoom = errors.New("boom")

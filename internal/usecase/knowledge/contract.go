package knowledge

import (
	"context"

	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
)

// Repository stores knowledge entries and answers nearest-neighbour queries.
type Repository interface {
	EnsureIndex(ctx context.Context) error
	DropIndex(ctx context.Context) error
	// Get returns the stored entry without its vector; found is false when absent.
	Get(ctx context.Context, docType, name string) (e domknow.Entry, found bool, err error)
	Put(ctx context.Context, e domknow.Entry) error
	Remove(ctx context.Context, docType, name string) error
	Search(ctx context.Context, vector []float32, module string, limit int) ([]domknow.Hit, error)
}

// SchemaReader resolves DocType descriptors for rendering.
type SchemaReader interface {
	GetDocType(ctx context.Context, name string) (doctype.DocType, error)
}

// DocumentLister pages through stored documents.
type DocumentLister interface {
	List(ctx context.Context, docType string, page, pageSize int) (domdoc.Page, error)
}

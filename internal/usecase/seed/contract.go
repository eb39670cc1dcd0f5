package seed

import (
	"context"

	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

// SchemaWriter upserts DocTypes into the catalog.
type SchemaWriter interface {
	EnsureConstraints(ctx context.Context) error
	SaveDocType(ctx context.Context, dt doctype.DocType) error
}

// DocumentWriter reads and creates documents.
type DocumentWriter interface {
	Get(ctx context.Context, docType, id string) (domdoc.Document, error)
	Create(ctx context.Context, docType string, data map[string]any) (domdoc.Document, error)
}

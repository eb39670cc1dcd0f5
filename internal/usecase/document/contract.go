package document

import (
	"context"

	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

// Repository defines the storage contract for documents of any DocType.
type Repository interface {
	List(ctx context.Context, docType string, page, pageSize int) (domdoc.Page, error)
	// Get returns domain.ErrDocumentNotFound when id matches no node.
	Get(ctx context.Context, docType, id string) (domdoc.Document, error)
	Create(ctx context.Context, docType string, p domdoc.Prepared) (domdoc.Document, error)
	Update(ctx context.Context, docType, id string, props map[string]any) (domdoc.Document, error)
	Delete(ctx context.Context, docType, id string) (bool, error)
}

// ChangeListener observes successful writes. Errors are logged, never returned.
type ChangeListener interface {
	OnSaved(ctx context.Context, doc domdoc.Document) error
	OnDeleted(ctx context.Context, docType, name string) error
}

package schema

import (
	"context"

	"github.com/xdev-exe/cortyx/internal/domain/doctype"
)

// Repository defines the storage contract for the schema catalog.
type Repository interface {
	Exists(ctx context.Context, name string) (bool, error)
	// Get returns domain.ErrDocTypeNotFound when name is not defined.
	Get(ctx context.Context, name string) (doctype.DocType, error)
	Memberships(ctx context.Context) ([]doctype.Membership, error)
	Save(ctx context.Context, dt doctype.DocType) error
	EnsureConstraints(ctx context.Context) error
}

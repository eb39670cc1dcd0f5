package cortyx

import "github.com/xdev-exe/cortyx/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound          = domain.ErrNotFound
	ErrDocTypeNotFound   = domain.ErrDocTypeNotFound
	ErrDocumentNotFound  = domain.ErrDocumentNotFound
	ErrAlreadyExists     = domain.ErrAlreadyExists
	ErrInvalidDocument   = domain.ErrInvalidDocument
	ErrInvalidSchema     = domain.ErrInvalidSchema
	ErrInvalidPagination = domain.ErrInvalidPagination
)

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocTypeNotFound signals an unknown DocType. It matches ErrNotFound.
	ErrDocTypeNotFound = fmt.Errorf("doctype %w", ErrNotFound)
	// ErrDocumentNotFound signals a missing document. It matches ErrNotFound.
	ErrDocumentNotFound = fmt.Errorf("document %w", ErrNotFound)

	// ErrAlreadyExists signals a duplicate identifier.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidDocument signals document data the store cannot hold.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidSchema signals an invalid DocType definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidPagination signals an out-of-bounds page or page size.
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrInvalidQuery signals an unusable search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrSearchUnavailable signals that knowledge search is not configured.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

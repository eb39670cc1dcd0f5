// Package document implements the generic document use cases shared by every DocType.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	"github.com/xdev-exe/cortyx/internal/logger"
)

// ListResult is one page of a DocType listing with its paging metadata.
type ListResult struct {
	Data       []domdoc.Document
	Total      int64
	Page       int
	PageSize   int
	TotalPages int64
}

// Service handles document CRUD. Field-level rules such as reqd are not
// enforced here; callers that need them validate before Create/Update.
//
// Documents are flat: values are scalars or lists of one scalar kind.
// Nested objects, lists of mixed kinds and nulls inside lists fail with
// domain.ErrInvalidDocument. A numeric name is stored as its decimal text.
type Service struct {
	repo            Repository
	listeners       []ChangeListener
	defaultPageSize int
	maxPageSize     int
}

// New creates a document service. Page sizes are unbounded until
// WithPagination sets a maximum.
func New(repo Repository) *Service {
	return &Service{
		repo:            repo,
		defaultPageSize: 20,
	}
}

// WithPagination configures the default page size and an optional maximum.
// A maxPageSize of 0 leaves page sizes unbounded.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// WithListener registers l for change notifications.
func (s *Service) WithListener(l ChangeListener) *Service {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
	return s
}

// DefaultPageSize returns the page size used when a caller gives none.
func (s *Service) DefaultPageSize() int { return s.defaultPageSize }

// List returns page (1-based) of docType ordered by most recent change.
// Pages past the end have no data but still report the total.
func (s *Service) List(ctx context.Context, docType string, page, pageSize int) (ListResult, error) {
	if err := checkDocType(docType); err != nil {
		return ListResult{}, err
	}
	if page < 1 {
		return ListResult{}, fmt.Errorf("page must be >= 1, got %d: %w", page, domain.ErrInvalidPagination)
	}
	if pageSize < 1 {
		return ListResult{}, fmt.Errorf("pageSize must be >= 1, got %d: %w", pageSize, domain.ErrInvalidPagination)
	}
	if s.maxPageSize > 0 && pageSize > s.maxPageSize {
		return ListResult{}, fmt.Errorf(
			"pageSize must be at most %d, got %d: %w", s.maxPageSize, pageSize, domain.ErrInvalidPagination,
		)
	}

	p, err := s.repo.List(ctx, docType, page, pageSize)
	if err != nil {
		s.logFailure(ctx, "doc.list", docType, "", err)
		return ListResult{}, fmt.Errorf("list documents: %w", err)
	}

	data := p.Data
	if data == nil {
		data = []domdoc.Document{}
	}
	return ListResult{
		Data:       data,
		Total:      p.Total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(p.Total, pageSize),
	}, nil
}

// Get returns the document of docType identified by name or element id.
func (s *Service) Get(ctx context.Context, docType, id string) (domdoc.Document, error) {
	if err := checkDocType(docType); err != nil {
		return domdoc.Document{}, err
	}
	doc, err := s.repo.Get(ctx, docType, id)
	if err != nil {
		s.logFailure(ctx, "doc.get", docType, id, err)
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Create stores data as a new document. A missing or empty name is generated
// from the DocType's naming series.
func (s *Service) Create(ctx context.Context, docType string, data map[string]any) (domdoc.Document, error) {
	if err := checkDocType(docType); err != nil {
		return domdoc.Document{}, err
	}
	p, err := domdoc.PrepareCreate(data)
	if err != nil {
		return domdoc.Document{}, err
	}

	doc, err := s.repo.Create(ctx, docType, p)
	if err != nil {
		s.logFailure(ctx, "doc.create", docType, p.Name, err)
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}

	logger.FromContext(ctx).Debug("document created", logger.Op("doc.create", docType, doc.Name())...)
	s.notifySaved(ctx, doc)
	return doc, nil
}

// Update merges patch into the document. Null values remove properties;
// name and the timestamps cannot be changed.
func (s *Service) Update(ctx context.Context, docType, id string, patch map[string]any) (domdoc.Document, error) {
	if err := checkDocType(docType); err != nil {
		return domdoc.Document{}, err
	}
	props, err := domdoc.PreparePatch(patch)
	if err != nil {
		return domdoc.Document{}, err
	}

	doc, err := s.repo.Update(ctx, docType, id, props)
	if err != nil {
		s.logFailure(ctx, "doc.update", docType, id, err)
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}

	s.notifySaved(ctx, doc)
	return doc, nil
}

// Delete removes the document and reports whether one existed.
// Deleting an absent document is not an error.
func (s *Service) Delete(ctx context.Context, docType, id string) (bool, error) {
	if err := checkDocType(docType); err != nil {
		return false, err
	}

	// Listeners key on the document name, which id may not be.
	name := id
	if len(s.listeners) > 0 {
		doc, err := s.repo.Get(ctx, docType, id)
		switch {
		case errors.Is(err, domain.ErrDocumentNotFound):
			return false, nil
		case err != nil:
			s.logFailure(ctx, "doc.delete", docType, id, err)
			return false, fmt.Errorf("delete document: %w", err)
		}
		name = doc.Name()
	}

	deleted, err := s.repo.Delete(ctx, docType, id)
	if err != nil {
		s.logFailure(ctx, "doc.delete", docType, id, err)
		return false, fmt.Errorf("delete document: %w", err)
	}
	if deleted {
		s.notifyDeleted(ctx, docType, name)
	}
	return deleted, nil
}

func (s *Service) notifySaved(ctx context.Context, doc domdoc.Document) {
	for _, l := range s.listeners {
		if err := l.OnSaved(ctx, doc); err != nil {
			logger.FromContext(ctx).Warn("change listener failed",
				append(logger.Op("doc.saved", doc.DocType(), doc.Name()), zap.Error(err))...)
		}
	}
}

func (s *Service) notifyDeleted(ctx context.Context, docType, name string) {
	for _, l := range s.listeners {
		if err := l.OnDeleted(ctx, docType, name); err != nil {
			logger.FromContext(ctx).Warn("change listener failed",
				append(logger.Op("doc.deleted", docType, name), zap.Error(err))...)
		}
	}
}

// logFailure logs store failures. Not-found and duplicates are client outcomes and stay quiet.
func (s *Service) logFailure(ctx context.Context, op, docType, id string, err error) {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrAlreadyExists) {
		return
	}
	logger.FromContext(ctx).Error("document operation failed", append(logger.Op(op, docType, id), zap.Error(err))...)
}

func checkDocType(docType string) error {
	if strings.TrimSpace(docType) == "" {
		return fmt.Errorf("blank doctype: %w", domain.ErrDocTypeNotFound)
	}
	return nil
}

func totalPages(total int64, pageSize int) int64 {
	if total <= 0 {
		return 0
	}
	size := int64(pageSize)
	return (total + size - 1) / size
}

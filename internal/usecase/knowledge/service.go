// Package knowledge keeps a semantic index of document text and searches it.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
	"github.com/xdev-exe/cortyx/internal/logger"
)

const (
	// MaxLimit caps the number of results of one search.
	MaxLimit = 50

	reindexPageSize = 100
)

// Service indexes documents and serves knowledge search.
// It also acts as a document change listener.
type Service struct {
	repo       Repository
	embedder   domain.Embedder
	queryEmb   domain.Embedder
	schemas    SchemaReader
	docs       DocumentLister
	topK       int
	indexTotal *prometheus.CounterVec
}

// New creates a knowledge service. indexTotal may be nil; when set it is a
// counter vec with labels "action" and "status".
func New(
	repo Repository, embedder domain.Embedder, schemas SchemaReader, docs DocumentLister,
	topK int, indexTotal *prometheus.CounterVec,
) *Service {
	if topK <= 0 {
		topK = 5
	}
	return &Service{
		repo:       repo,
		embedder:   embedder,
		queryEmb:   embedder,
		schemas:    schemas,
		docs:       docs,
		topK:       topK,
		indexTotal: indexTotal,
	}
}

// WithQueryEmbedder sets the embedder used for search queries. Models trained
// with asymmetric prompts embed queries differently from stored content.
func (s *Service) WithQueryEmbedder(e domain.Embedder) *Service {
	if e != nil {
		s.queryEmb = e
	}
	return s
}

// EnsureIndex prepares the underlying vector index.
func (s *Service) EnsureIndex(ctx context.Context) error {
	return s.repo.EnsureIndex(ctx) //nolint:wrapcheck // thin delegation
}

// RecreateIndex drops the vector index and creates it again with the current
// settings. Stored entries are kept.
func (s *Service) RecreateIndex(ctx context.Context) error {
	if err := s.repo.DropIndex(ctx); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	if err := s.repo.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("recreate index: %w", err)
	}
	logger.FromContext(ctx).Info("knowledge index recreated")
	return nil
}

// Index renders doc as text, embeds it and stores the entry, replacing any previous one.
func (s *Service) Index(ctx context.Context, doc domdoc.Document) error {
	dt, err := s.schemas.GetDocType(ctx, doc.DocType())
	if err != nil {
		s.count("index", err)
		return fmt.Errorf("index %s/%s: %w", doc.DocType(), doc.Name(), err)
	}
	return s.index(ctx, dt, doc, Render(dt, doc))
}

// indexChanged is Index for change notifications: an entry whose text and
// modules are already stored is left alone, so saves that touch only hidden
// fields cost no embedding call.
func (s *Service) indexChanged(ctx context.Context, doc domdoc.Document) error {
	dt, err := s.schemas.GetDocType(ctx, doc.DocType())
	if err != nil {
		s.count("index", err)
		return fmt.Errorf("index %s/%s: %w", doc.DocType(), doc.Name(), err)
	}
	content := Render(dt, doc)

	prev, found, err := s.repo.Get(ctx, doc.DocType(), doc.Name())
	switch {
	case err != nil:
		logger.FromContext(ctx).Warn("knowledge entry lookup failed",
			append(logger.Op("knowledge.index", doc.DocType(), doc.Name()), zap.Error(err))...)
	case found && prev.Content == content && slices.Equal(prev.Modules, dt.Modules()):
		s.countStatus("index", "unchanged")
		return nil
	}
	return s.index(ctx, dt, doc, content)
}

func (s *Service) index(ctx context.Context, dt doctype.DocType, doc domdoc.Document, content string) (err error) {
	defer func() { s.count("index", err) }()

	res, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed %s/%s: %w", doc.DocType(), doc.Name(), err)
	}

	entry := domknow.Entry{
		DocType: doc.DocType(),
		Name:    doc.Name(),
		Modules: dt.Modules(),
		Content: content,
		Vector:  res.Embedding,
	}
	if err := s.repo.Put(ctx, entry); err != nil {
		return fmt.Errorf("index %s/%s: %w", doc.DocType(), doc.Name(), err)
	}
	return nil
}

// Remove drops the entry of one document.
func (s *Service) Remove(ctx context.Context, docType, name string) error {
	err := s.repo.Remove(ctx, docType, name)
	s.count("remove", err)
	if err != nil {
		return fmt.Errorf("remove %s/%s: %w", docType, name, err)
	}
	return nil
}

// Search embeds q.Text and returns the nearest entries, filtered by module when set.
func (s *Service) Search(ctx context.Context, q domknow.Query) ([]domknow.Hit, error) {
	if err := q.Validate(MaxLimit); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	limit := q.Limit
	if limit == 0 {
		limit = s.topK
	}

	res, err := s.queryEmb.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.repo.Search(ctx, res.Embedding, strings.TrimSpace(q.Module), limit)
	if err != nil {
		logger.FromContext(ctx).Error("knowledge search failed", zap.String("module", q.Module), zap.Error(err))
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// Reindex indexes every stored document of docType and returns how many were indexed.
// It stops at the first failure.
func (s *Service) Reindex(ctx context.Context, docType string) (int, error) {
	dt, err := s.schemas.GetDocType(ctx, docType)
	if err != nil {
		return 0, fmt.Errorf("reindex %s: %w", docType, err)
	}

	indexed := 0
	for page := 1; ; page++ {
		p, err := s.docs.List(ctx, docType, page, reindexPageSize)
		if err != nil {
			return indexed, fmt.Errorf("reindex %s page %d: %w", docType, page, err)
		}
		for _, doc := range p.Data {
			if err := s.index(ctx, dt, doc, Render(dt, doc)); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(p.Data) < reindexPageSize || int64(page*reindexPageSize) >= p.Total {
			break
		}
	}

	logger.FromContext(ctx).Info("reindexed doctype", zap.String("doctype", docType), zap.Int("documents", indexed))
	return indexed, nil
}

// OnSaved indexes a created or updated document when its indexed text changed.
func (s *Service) OnSaved(ctx context.Context, doc domdoc.Document) error {
	return s.indexChanged(ctx, doc)
}

// OnDeleted removes a deleted document from the index.
func (s *Service) OnDeleted(ctx context.Context, docType, name string) error {
	return s.Remove(ctx, docType, name)
}

// HealthCheck probes the embedding provider when it supports health checks.
func (s *Service) HealthCheck(ctx context.Context) error {
	if hc, ok := s.embedder.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through
	}
	return nil
}

func (s *Service) count(action string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, domain.ErrNotFound) {
			status = "not_found"
		}
	}
	s.countStatus(action, status)
}

func (s *Service) countStatus(action, status string) {
	if s.indexTotal != nil {
		s.indexTotal.WithLabelValues(action, status).Inc()
	}
}

// Render builds the indexed text of doc: a "<DocType> <name>" header, then one
// "<Label>: <value>" line per visible, non-empty field in field order.
func Render(dt doctype.DocType, doc domdoc.Document) string {
	var b strings.Builder
	b.WriteString(doc.DocType())
	b.WriteString(" ")
	b.WriteString(doc.Name())

	for _, f := range dt.Fields() {
		if f.Hidden() {
			continue
		}
		v, ok := doc.Get(f.Fieldname())
		if !ok {
			continue
		}
		text := formatValue(f, v)
		if text == "" {
			continue
		}
		b.WriteString("\n")
		b.WriteString(f.Label())
		b.WriteString(": ")
		b.WriteString(text)
	}
	return b.String()
}

func formatValue(f doctype.Field, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case int64:
		if f.Fieldtype() == doctype.Check {
			if val != 0 {
				return "Yes"
			}
			return "No"
		}
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(val))
		for _, it := range val {
			if s := formatValue(f, it); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

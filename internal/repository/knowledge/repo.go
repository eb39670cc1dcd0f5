// Package knowledge stores knowledge entries as valkey hashes under a
// vector index and answers KNN queries over them.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xdev-exe/cortyx/internal/db"
	"github.com/xdev-exe/cortyx/internal/domain"
	domknow "github.com/xdev-exe/cortyx/internal/domain/knowledge"
)

const (
	keyPrefix = domain.KeyPrefix + "knowledge:"
	indexName = keyPrefix + "idx"

	fieldDocType = "doctype"
	fieldName    = "name"
	fieldModule  = "module"
	fieldContent = "content"
	fieldVector  = "vector"

	moduleSeparator = ","
)

// store is the consumer interface for the knowledge index (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements usecase/knowledge.Repository.
type Repo struct {
	store store
	dim   int
	hnsw  HNSWConfig
}

// New creates a knowledge repository for vectors of dim dimensions.
func New(s store, dim int, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, dim: dim, hnsw: hnsw}
}

// EnsureIndex creates the vector index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName)
	if err != nil {
		return fmt.Errorf("check knowledge index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := indexDefinition(r.dim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build knowledge index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create knowledge index: %w", err)
	}
	return nil
}

// DropIndex removes the vector index. Stored entries stay and are picked up
// again by the next EnsureIndex. A missing index is not an error.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, indexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop knowledge index: %w", err)
	}
	return nil
}

// Get returns the stored entry of one document without its vector.
func (r *Repo) Get(ctx context.Context, docType, name string) (domknow.Entry, bool, error) {
	fields, err := r.store.HGetAll(ctx, entryKey(docType, name))
	if err != nil {
		return domknow.Entry{}, false, fmt.Errorf("get knowledge %s/%s: %w", docType, name, err)
	}
	if len(fields) == 0 {
		return domknow.Entry{}, false, nil
	}
	var modules []string
	if m := fields[fieldModule]; m != "" {
		modules = strings.Split(m, moduleSeparator)
	}
	return domknow.Entry{
		DocType: fields[fieldDocType],
		Name:    fields[fieldName],
		Modules: modules,
		Content: fields[fieldContent],
	}, true, nil
}

// Put stores or replaces the entry of one document.
func (r *Repo) Put(ctx context.Context, e domknow.Entry) error {
	if len(e.Vector) != r.dim {
		return fmt.Errorf("vector has %d dimensions, index expects %d", len(e.Vector), r.dim)
	}
	fields := map[string]string{
		fieldDocType: e.DocType,
		fieldName:    e.Name,
		fieldModule:  strings.Join(e.Modules, moduleSeparator),
		fieldContent: e.Content,
		fieldVector:  db.EncodeVector(e.Vector),
	}
	if err := r.store.HSet(ctx, entryKey(e.DocType, e.Name), fields); err != nil {
		return fmt.Errorf("put knowledge %s/%s: %w", e.DocType, e.Name, err)
	}
	return nil
}

// Remove deletes the entry of one document. Missing entries are ignored.
func (r *Repo) Remove(ctx context.Context, docType, name string) error {
	if err := r.store.Del(ctx, entryKey(docType, name)); err != nil {
		return fmt.Errorf("remove knowledge %s/%s: %w", docType, name, err)
	}
	return nil
}

// Search returns the limit nearest entries to vector, optionally restricted to a module.
func (r *Repo) Search(ctx context.Context, vector []float32, module string, limit int) ([]domknow.Hit, error) {
	q := &db.KNNQuery{
		IndexName:    indexName,
		VectorField:  fieldVector,
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{fieldDocType, fieldName, fieldModule, fieldContent},
	}
	if module != "" {
		q.Filters = []db.TagFilter{{Field: fieldModule, Value: module}}
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", err)
	}

	hits := make([]domknow.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		hits = append(hits, domknow.Hit{
			DocType: e.Fields[fieldDocType],
			Name:    e.Fields[fieldName],
			Module:  hitModule(e.Fields[fieldModule], module),
			Content: e.Fields[fieldContent],
			Score:   e.Score,
		})
	}
	return hits, nil
}

func indexDefinition(dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	return db.NewIndex(indexName).
		Prefix(keyPrefix).
		Tag(fieldDocType).
		TagList(fieldModule, moduleSeparator).
		VectorHNSW(fieldVector, dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
}

func entryKey(docType, name string) string {
	return keyPrefix + domknow.EntryID(docType, name)
}

// hitModule reports the filtered module, or the first module the entry belongs to.
func hitModule(stored, filter string) string {
	if filter != "" {
		return filter
	}
	first, _, _ := strings.Cut(stored, moduleSeparator)
	return first
}

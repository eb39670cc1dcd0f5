package knowledge

import (
	"context"

	"github.com/xdev-exe/cortyx/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hashes map[string]map[string]string

	indexExists bool
	created     *db.IndexDefinition
	createErr   error
	dropped     []string
	dropErr     error
	lastQuery   *db.KNNQuery
	searchFn    func(q *db.KNNQuery) (*db.SearchResult, error)
}

func newMockStore() *mockStore {
	return &mockStore{hashes: make(map[string]map[string]string)}
}

func (m *mockStore) HSet(_ context.Context, key string, fields map[string]string) error {
	m.hashes[key] = fields
	return nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if h, ok := m.hashes[key]; ok {
		return h, nil
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = def
	return m.createErr
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	return m.dropErr
}

func (m *mockStore) IndexExists(context.Context, string) (bool, error) {
	return m.indexExists, nil
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.lastQuery = q
	if m.searchFn != nil {
		return m.searchFn(q)
	}
	return &db.SearchResult{}, nil
}

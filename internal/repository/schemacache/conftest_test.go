package schemacache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/db"
	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
)

// memStore is an in-memory cache store. getErr/setErr/delErr force failures.
type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	ttls   map[string]time.Duration
	getErr error
	setErr error
	delErr error
	dels   [][]string
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dels = append(m.dels, keys)
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// fakeRepo counts calls to the inner schema repository.
type fakeRepo struct {
	types       map[string]doctype.DocType
	err         error
	getCalls    int
	existsCalls int
	memberCalls int
	saved       []doctype.DocType
}

func (f *fakeRepo) Exists(_ context.Context, name string) (bool, error) {
	f.existsCalls++
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.types[name]
	return ok, nil
}

func (f *fakeRepo) Get(_ context.Context, name string) (doctype.DocType, error) {
	f.getCalls++
	if f.err != nil {
		return doctype.DocType{}, f.err
	}
	dt, ok := f.types[name]
	if !ok {
		return doctype.DocType{}, domain.ErrDocTypeNotFound
	}
	return dt, nil
}

func (f *fakeRepo) Memberships(context.Context) ([]doctype.Membership, error) {
	f.memberCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]doctype.Membership, 0, len(f.types))
	for name, dt := range f.types {
		out = append(out, doctype.Membership{DocType: name, Modules: dt.Modules()})
	}
	return out, nil
}

func (f *fakeRepo) Save(_ context.Context, dt doctype.DocType) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, dt)
	f.types[dt.Name()] = dt
	return nil
}

func (f *fakeRepo) EnsureConstraints(context.Context) error { return f.err }

func customer(t *testing.T) doctype.DocType {
	t.Helper()
	name, err := doctype.NewField(doctype.Spec{Fieldname: "customer_name", Label: "Customer Name", Fieldtype: doctype.Data, Reqd: true, InListView: true})
	require.NoError(t, err)
	group, err := doctype.NewField(doctype.Spec{Fieldname: "customer_group", Label: "Customer Group", Fieldtype: doctype.Link, Options: "Customer Group", Description: "Pricing tier"})
	require.NoError(t, err)
	dt, err := doctype.New("Customer", []string{"Selling", "CRM"}, []doctype.Field{name, group})
	require.NoError(t, err)
	return dt
}

package document

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/xdev-exe/cortyx/internal/domain"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

// memRepo is an in-memory Repository with the store's observable semantics:
// generated names, merge updates with null removal, modified-desc ordering.
type memRepo struct {
	mu     sync.Mutex
	clock  int64
	series map[string]int64
	nodes  map[string][]map[string]any // docType -> nodes
	ids    int
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{series: map[string]int64{}, nodes: map[string][]map[string]any{}}
}

func (m *memRepo) tick() int64 {
	m.clock++
	return m.clock
}

func (m *memRepo) find(docType, id string) map[string]any {
	for _, n := range m.nodes[docType] {
		if n[domdoc.KeyName] == id {
			return n
		}
	}
	for _, n := range m.nodes[docType] {
		if n["_eid"] == id {
			return n
		}
	}
	return nil
}

func toDoc(docType string, n map[string]any) domdoc.Document {
	props := maps.Clone(n)
	eid, _ := props["_eid"].(string)
	delete(props, "_eid")
	return domdoc.Reconstruct(docType, eid, props)
}

func (m *memRepo) List(_ context.Context, docType string, page, pageSize int) (domdoc.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domdoc.Page{}, m.err
	}
	nodes := append([]map[string]any(nil), m.nodes[docType]...)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i][domdoc.KeyModified].(int64) > nodes[j][domdoc.KeyModified].(int64)
	})
	out := domdoc.Page{Total: int64(len(nodes))}
	start, ok := domdoc.Offset(page, pageSize)
	if !ok {
		return out, nil
	}
	for i := start; i < len(nodes) && i < start+pageSize; i++ {
		out.Data = append(out.Data, toDoc(docType, nodes[i]))
	}
	return out, nil
}

func (m *memRepo) Get(_ context.Context, docType, id string) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domdoc.Document{}, m.err
	}
	n := m.find(docType, id)
	if n == nil {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return toDoc(docType, n), nil
}

func (m *memRepo) Create(_ context.Context, docType string, p domdoc.Prepared) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domdoc.Document{}, m.err
	}
	name := p.Name
	if name == "" {
		for {
			m.series[docType]++
			name = domdoc.FormatName(domdoc.NamePrefix(docType), m.series[docType])
			if m.find(docType, name) == nil {
				break
			}
		}
	} else if m.find(docType, name) != nil {
		return domdoc.Document{}, fmt.Errorf("%s %q: %w", docType, name, domain.ErrAlreadyExists)
	}

	m.ids++
	now := m.tick()
	n := maps.Clone(p.Props)
	if n == nil {
		n = map[string]any{}
	}
	n[domdoc.KeyName] = name
	n[domdoc.KeyCreation] = now
	n[domdoc.KeyModified] = now
	n["_eid"] = fmt.Sprintf("4:test:%d", m.ids)
	m.nodes[docType] = append(m.nodes[docType], n)
	return toDoc(docType, n), nil
}

func (m *memRepo) Update(_ context.Context, docType, id string, props map[string]any) (domdoc.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domdoc.Document{}, m.err
	}
	n := m.find(docType, id)
	if n == nil {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	for k, v := range props {
		if v == nil {
			delete(n, k)
			continue
		}
		n[k] = v
	}
	n[domdoc.KeyModified] = m.tick()
	return toDoc(docType, n), nil
}

func (m *memRepo) Delete(_ context.Context, docType, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	n := m.find(docType, id)
	if n == nil {
		return false, nil
	}
	nodes := m.nodes[docType]
	for i := range nodes {
		if nodes[i]["_eid"] == n["_eid"] {
			m.nodes[docType] = append(nodes[:i], nodes[i+1:]...)
			break
		}
	}
	return true, nil
}

type recordingListener struct {
	saved   []string
	deleted []string
	err     error
}

func (l *recordingListener) OnSaved(_ context.Context, doc domdoc.Document) error {
	l.saved = append(l.saved, doc.DocType()+"/"+doc.Name())
	return l.err
}

func (l *recordingListener) OnDeleted(_ context.Context, docType, name string) error {
	l.deleted = append(l.deleted, docType+"/"+name)
	return l.err
}

package document

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/domain"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

func names(docs []domdoc.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name()
	}
	return out
}

func TestCreate_RoundTrip(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	created, err := svc.Create(ctx, "Customer", map[string]any{
		"customer_name": "Acme",
		"credit_limit":  5000.5,
		"active":        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "CUS-001", created.Name())

	got, err := svc.Get(ctx, "Customer", "CUS-001")
	require.NoError(t, err)
	for _, key := range []string{"customer_name", "credit_limit", "active"} {
		want, _ := created.Get(key)
		v, ok := got.Get(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, v, key)
	}

	byID, err := svc.Get(ctx, "Customer", created.ElementID())
	require.NoError(t, err)
	assert.Equal(t, "CUS-001", byID.Name())
}

func TestCreate_NamingSeries(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "Sales Invoice", map[string]any{"name": "SAL-002"})
	require.NoError(t, err)

	var got []string
	for range 2 {
		doc, err := svc.Create(ctx, "Sales Invoice", map[string]any{})
		require.NoError(t, err)
		got = append(got, doc.Name())
	}
	assert.Equal(t, []string{"SAL-001", "SAL-003"}, got)
}

func TestCreate_EmptyNameIsGenerated(t *testing.T) {
	svc := New(newMemRepo())

	doc, err := svc.Create(context.Background(), "Lead", map[string]any{"name": "  "})
	require.NoError(t, err)
	assert.Equal(t, "LEA-001", doc.Name())
}

func TestCreate_Duplicate(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "Item", map[string]any{"name": "ITEM-A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Item", map[string]any{"name": "ITEM-A"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreate_InvalidDocument(t *testing.T) {
	svc := New(newMemRepo())

	_, err := svc.Create(context.Background(), "Item", map[string]any{"dims": map[string]any{"w": 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)

	_, err = svc.Create(context.Background(), "Item", map[string]any{"dims": []any{1, "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidDocument)
}

func TestCreate_ScalarList(t *testing.T) {
	svc := New(newMemRepo())

	doc, err := svc.Create(context.Background(), "Item", map[string]any{"dims": []any{1, 2}, "tags": []any{"a"}})
	require.NoError(t, err)

	dims, _ := doc.Get("dims")
	assert.Equal(t, []int64{1, 2}, dims)
	tags, _ := doc.Get("tags")
	assert.Equal(t, []string{"a"}, tags)
}

func TestBlankDocType(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	_, err := svc.List(ctx, " ", 1, 20)
	assert.ErrorIs(t, err, domain.ErrDocTypeNotFound)
	_, err = svc.Get(ctx, "", "X")
	assert.ErrorIs(t, err, domain.ErrDocTypeNotFound)
	_, err = svc.Create(ctx, "", nil)
	assert.ErrorIs(t, err, domain.ErrDocTypeNotFound)
	_, err = svc.Delete(ctx, "", "X")
	assert.ErrorIs(t, err, domain.ErrDocTypeNotFound)
}

func TestList_Pagination(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	for range 5 {
		_, err := svc.Create(ctx, "Warehouse", map[string]any{})
		require.NoError(t, err)
	}

	seen := map[string]bool{}
	for page := 1; page <= 3; page++ {
		res, err := svc.List(ctx, "Warehouse", page, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Total)
		assert.Equal(t, int64(3), res.TotalPages)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, 2, res.PageSize)
		for _, d := range res.Data {
			assert.False(t, seen[d.Name()], "duplicate across pages: %s", d.Name())
			seen[d.Name()] = true
		}
	}
	assert.Len(t, seen, 5)

	res, err := svc.List(ctx, "Warehouse", 4, 2)
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(5), res.Total)
}

func TestList_EmptyType(t *testing.T) {
	svc := New(newMemRepo())

	res, err := svc.List(context.Background(), "Asset", 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, int64(0), res.TotalPages)
}

func TestList_InvalidPagination(t *testing.T) {
	svc := New(newMemRepo()).WithPagination(20, 50)
	ctx := context.Background()

	tests := []struct {
		name           string
		page, pageSize int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero size", 1, 0},
		{"over max", 1, 51},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.List(ctx, "Item", tt.page, tt.pageSize)
			assert.ErrorIs(t, err, domain.ErrInvalidPagination)
		})
	}

	_, err := svc.List(ctx, "Item", 1, 50)
	assert.NoError(t, err)
	assert.Equal(t, 20, svc.DefaultPageSize())
}

func TestList_PageSizeUnboundedByDefault(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()
	for range 3 {
		_, err := svc.Create(ctx, "Item", map[string]any{})
		require.NoError(t, err)
	}

	for _, size := range []int{101, 1000} {
		res, err := svc.List(ctx, "Item", 1, size)
		require.NoError(t, err)
		assert.Len(t, res.Data, 3)
		assert.Equal(t, size, res.PageSize)
		assert.Equal(t, int64(1), res.TotalPages)
	}
}

func TestList_HugePageIsPastTheEnd(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()
	for range 2 {
		_, err := svc.Create(ctx, "Item", map[string]any{})
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, "Item", math.MaxInt/50, 100)
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, int64(1), res.TotalPages)
}

func TestList_OrderedByModified(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	for _, n := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, "Location", map[string]any{"name": n})
		require.NoError(t, err)
	}
	_, err := svc.Update(ctx, "Location", "A", map[string]any{"city": "Pune"})
	require.NoError(t, err)

	res, err := svc.List(ctx, "Location", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C", "B"}, names(res.Data))
}

func TestUpdate_MergeSemantics(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "Customer", map[string]any{
		"name": "CUST-1", "customer_name": "Acme", "status": "Active", "notes": "vip",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "Customer", "CUST-1", map[string]any{
		"status":   "Inactive",
		"notes":    nil,
		"name":     "RENAMED",
		"creation": "1970-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, "CUST-1", updated.Name())
	status, _ := updated.Get("status")
	assert.Equal(t, "Inactive", status)
	customerName, _ := updated.Get("customer_name")
	assert.Equal(t, "Acme", customerName)
	_, hasNotes := updated.Get("notes")
	assert.False(t, hasNotes)
	creation, _ := updated.Get("creation")
	assert.NotEqual(t, "1970-01-01", creation)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := New(newMemRepo())

	_, err := svc.Update(context.Background(), "Customer", "nope", map[string]any{"a": "b"})
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_Idempotent(t *testing.T) {
	svc := New(newMemRepo())
	ctx := context.Background()

	doc, err := svc.Create(ctx, "Asset", map[string]any{})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, "Asset", doc.Name())
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, "Asset", doc.Name())
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = svc.Get(ctx, "Asset", doc.Name())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
}

func TestListeners_Notified(t *testing.T) {
	l := &recordingListener{}
	svc := New(newMemRepo()).WithListener(l).WithListener(nil)
	ctx := context.Background()

	doc, err := svc.Create(ctx, "Item", map[string]any{"item_name": "Bolt"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, "Item", doc.ElementID(), map[string]any{"item_name": "Nut"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, "Item", doc.ElementID())
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(ctx, "Item", doc.ElementID())
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.Equal(t, []string{"Item/ITE-001", "Item/ITE-001"}, l.saved)
	assert.Equal(t, []string{"Item/ITE-001"}, l.deleted)
}

func TestListeners_FailureDoesNotFailWrite(t *testing.T) {
	l := &recordingListener{err: errors.New("index down")}
	svc := New(newMemRepo()).WithListener(l)

	doc, err := svc.Create(context.Background(), "Item", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "ITE-001", doc.Name())
	assert.Len(t, l.saved, 1)
}

func TestListeners_NotCalledOnFailure(t *testing.T) {
	l := &recordingListener{}
	repo := newMemRepo()
	repo.err = errors.New("connection refused")
	svc := New(repo).WithListener(l)

	_, err := svc.Create(context.Background(), "Item", map[string]any{})
	require.Error(t, err)
	assert.Empty(t, l.saved)
}

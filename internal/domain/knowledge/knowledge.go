// Package knowledge models the semantic index built over document text.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// namespace scopes entry keys so the same document always maps to the same key.
var namespace = uuid.MustParse("6f1c1f3e-43a5-4b8e-9a55-2f0d4e6b9c21")

// Entry is the indexed text of one document.
type Entry struct {
	DocType string
	Name    string
	Modules []string
	Content string
	Vector  []float32
}

// ID returns the deterministic key of the document's entry.
func (e Entry) ID() string { return EntryID(e.DocType, e.Name) }

// EntryID returns the deterministic key for a document.
func EntryID(docType, name string) string {
	return uuid.NewSHA1(namespace, []byte(docType+"\x00"+name)).String()
}

// Hit is one search result.
type Hit struct {
	DocType string
	Name    string
	Module  string
	Content string
	Score   float64
}

// Query is a semantic search request.
type Query struct {
	Text   string
	Module string
	Limit  int
}

// Validate checks the query. Limit 0 means the configured default.
func (q Query) Validate(maxLimit int) error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("query text is required")
	}
	if q.Limit < 0 || q.Limit > maxLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return nil
}

package document

import (
	"fmt"

	"github.com/xdev-exe/cortyx/internal/graph"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
)

// recordToDocument hydrates a document from a row carrying doc and element_id.
func recordToDocument(docType string, rec graph.Record) (domdoc.Document, error) {
	props := rec.Map("doc")
	if props == nil {
		return domdoc.Document{}, fmt.Errorf("record has no document node")
	}
	return domdoc.Reconstruct(docType, rec.String("element_id"), props), nil
}

func recordsToDocuments(docType string, recs []graph.Record) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0, len(recs))
	for _, rec := range recs {
		d, err := recordToDocument(docType, rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, nil
}

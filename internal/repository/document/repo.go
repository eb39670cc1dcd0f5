package document

import (
	"context"
	"fmt"

	"github.com/xdev-exe/cortyx/internal/domain"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/cypher"
)

// maxNameAttempts bounds the search for a free generated name when
// caller-named documents already occupy numbers of the series.
const maxNameAttempts = 50

// Repo implements usecase/document.Repository over the graph store.
// Every DocType shares this code path; the DocType name becomes the node label.
type Repo struct {
	runner graph.Runner
}

// New creates a document repository.
func New(r graph.Runner) *Repo {
	return &Repo{runner: r}
}

// List returns one page of documents and the total count, read in one
// transaction. A page whose offset overflows only runs the count.
func (r *Repo) List(ctx context.Context, docType string, page, pageSize int) (domdoc.Page, error) {
	if err := checkLabel(docType); err != nil {
		return domdoc.Page{}, err
	}
	countSt, err := countStatement(docType)
	if err != nil {
		return domdoc.Page{}, fmt.Errorf("build count: %w", err)
	}
	skip, inRange := domdoc.Offset(page, pageSize)
	var pageSt graph.Statement
	if inRange {
		if pageSt, err = pageStatement(docType, skip, pageSize); err != nil {
			return domdoc.Page{}, fmt.Errorf("build page: %w", err)
		}
	}

	var out domdoc.Page
	err = r.runner.ExecuteRead(ctx, "doc.list", func(ctx context.Context, tx graph.Tx) error {
		recs, err := tx.Run(ctx, countSt)
		if err != nil {
			return err
		}
		if rec, err := graph.Single(recs); err != nil {
			return err
		} else if rec != nil {
			out.Total = rec.Int("total")
		}
		if !inRange {
			out.Data = []domdoc.Document{}
			return nil
		}

		recs, err = tx.Run(ctx, pageSt)
		if err != nil {
			return err
		}
		docs, err := recordsToDocuments(docType, recs)
		if err != nil {
			return err
		}
		out.Data = docs
		return nil
	})
	if err != nil {
		return domdoc.Page{}, fmt.Errorf("list %s: %w", docType, err)
	}
	return out, nil
}

// Get returns the document matching id by name or element id.
func (r *Repo) Get(ctx context.Context, docType, id string) (domdoc.Document, error) {
	if err := checkLabel(docType); err != nil {
		return domdoc.Document{}, err
	}
	st, err := getStatement(docType, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build get: %w", err)
	}
	recs, err := graph.Read(ctx, r.runner, "doc.get", st)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get %s/%s: %w", docType, id, err)
	}
	return single(docType, recs)
}

// Create stores a new node. An empty name is replaced by the next free
// PREFIX-NNN of the DocType's naming series; the series counter moves in
// the same transaction as the insert.
func (r *Repo) Create(ctx context.Context, docType string, p domdoc.Prepared) (domdoc.Document, error) {
	if err := checkLabel(docType); err != nil {
		return domdoc.Document{}, err
	}
	var doc domdoc.Document
	err := r.runner.ExecuteWrite(ctx, "doc.create", func(ctx context.Context, tx graph.Tx) error {
		name := p.Name
		if name == "" {
			generated, err := nextFreeName(ctx, tx, docType)
			if err != nil {
				return err
			}
			name = generated
		} else {
			taken, err := nameTaken(ctx, tx, docType, name)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%s %q: %w", docType, name, domain.ErrAlreadyExists)
			}
		}

		st, err := createStatement(docType, name, p.Props)
		if err != nil {
			return fmt.Errorf("build create: %w", err)
		}
		recs, err := tx.Run(ctx, st)
		if err != nil {
			return err
		}
		doc, err = single(docType, recs)
		return err
	})
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("create %s: %w", docType, err)
	}
	return doc, nil
}

// Update merges props into the matched node and refreshes modified.
func (r *Repo) Update(ctx context.Context, docType, id string, props map[string]any) (domdoc.Document, error) {
	if err := checkLabel(docType); err != nil {
		return domdoc.Document{}, err
	}
	st, err := updateStatement(docType, id, props)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("build update: %w", err)
	}
	recs, err := graph.Write(ctx, r.runner, "doc.update", st)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("update %s/%s: %w", docType, id, err)
	}
	return single(docType, recs)
}

// Delete removes the matched node with its relationships and reports whether one existed.
func (r *Repo) Delete(ctx context.Context, docType, id string) (bool, error) {
	if err := checkLabel(docType); err != nil {
		return false, err
	}
	st, err := deleteStatement(docType, id)
	if err != nil {
		return false, fmt.Errorf("build delete: %w", err)
	}
	recs, err := graph.Write(ctx, r.runner, "doc.delete", st)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", docType, id, err)
	}
	rec, err := graph.Single(recs)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Int("deleted") > 0, nil
}

// checkLabel rejects DocType names that cannot map to exactly one label.
// No DocType can be defined under such a name, so it is reported as unknown.
func checkLabel(docType string) error {
	if _, err := cypher.QuoteIdentifier(docType); err != nil {
		return fmt.Errorf("doctype %q: %w: %w", docType, domain.ErrDocTypeNotFound, err)
	}
	return nil
}

func nextFreeName(ctx context.Context, tx graph.Tx, docType string) (string, error) {
	prefix := domdoc.NamePrefix(docType)
	for range maxNameAttempts {
		st, err := nextNameStatement(docType)
		if err != nil {
			return "", fmt.Errorf("build naming series: %w", err)
		}
		recs, err := tx.Run(ctx, st)
		if err != nil {
			return "", err
		}
		rec, err := graph.Single(recs)
		if err != nil {
			return "", err
		}
		if rec == nil {
			return "", fmt.Errorf("naming series returned no value")
		}

		name := domdoc.FormatName(prefix, rec.Int("current"))
		taken, err := nameTaken(ctx, tx, docType, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", docType, maxNameAttempts)
}

func nameTaken(ctx context.Context, tx graph.Tx, docType, name string) (bool, error) {
	st, err := nameTakenStatement(docType, name)
	if err != nil {
		return false, fmt.Errorf("build name check: %w", err)
	}
	recs, err := tx.Run(ctx, st)
	if err != nil {
		return false, err
	}
	rec, err := graph.Single(recs)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Bool("taken"), nil
}

func single(docType string, recs []graph.Record) (domdoc.Document, error) {
	rec, err := graph.Single(recs)
	if err != nil {
		return domdoc.Document{}, err
	}
	if rec == nil {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return recordToDocument(docType, rec)
}

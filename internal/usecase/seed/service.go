// Package seed loads a DocType catalog file into the graph store.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	domdoc "github.com/xdev-exe/cortyx/internal/domain/document"
	"github.com/xdev-exe/cortyx/internal/logger"
)

// Status is the outcome of seeding one document.
type Status string

// Document outcomes.
const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result is the outcome of one sample document.
type Result struct {
	DocType string
	Name    string
	Status  Status
	Err     error
}

// Report summarizes a seed run.
type Report struct {
	RunID    string
	DocTypes int
	Results  []Result
}

// Count returns the number of results with status st.
func (r Report) Count(st Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == st {
			n++
		}
	}
	return n
}

// Service applies catalogs with per-document error reporting.
type Service struct {
	schema SchemaWriter
	docs   DocumentWriter
}

// New creates a seed service.
func New(schema SchemaWriter, docs DocumentWriter) *Service {
	return &Service{schema: schema, docs: docs}
}

// Apply ensures constraints, upserts every DocType of c and creates its sample
// documents. Named documents that already exist are skipped, so Apply can be
// rerun. A DocType that fails to save aborts the run; a document that fails
// only marks its own result.
func (s *Service) Apply(ctx context.Context, c Catalog) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx = logger.With(ctx, zap.String("seed_run", report.RunID))
	log := logger.FromContext(ctx)

	if err := s.schema.EnsureConstraints(ctx); err != nil {
		return report, fmt.Errorf("seed: %w", err)
	}

	for _, spec := range c.DocTypes {
		dt, err := spec.DocType()
		if err != nil {
			return report, fmt.Errorf("seed: %w", err)
		}
		if err := s.schema.SaveDocType(ctx, dt); err != nil {
			return report, fmt.Errorf("seed %s: %w", dt.Name(), err)
		}
		report.DocTypes++

		for _, data := range spec.Documents {
			res := s.seedDocument(ctx, dt.Name(), data)
			if res.Err != nil {
				log.Warn("seed document failed",
					append(logger.Op("seed.document", res.DocType, res.Name), zap.Error(res.Err))...)
			}
			report.Results = append(report.Results, res)
		}
	}

	log.Info("seed applied",
		zap.Int("doctypes", report.DocTypes),
		zap.Int("created", report.Count(StatusCreated)),
		zap.Int("skipped", report.Count(StatusSkipped)),
		zap.Int("failed", report.Count(StatusFailed)),
	)
	return report, nil
}

func (s *Service) seedDocument(ctx context.Context, docType string, data map[string]any) Result {
	name, _ := data[domdoc.KeyName].(string)
	res := Result{DocType: docType, Name: name}

	if name != "" {
		_, err := s.docs.Get(ctx, docType, name)
		switch {
		case err == nil:
			res.Status = StatusSkipped
			return res
		case !errors.Is(err, domain.ErrNotFound):
			res.Status, res.Err = StatusFailed, err
			return res
		}
	}

	doc, err := s.docs.Create(ctx, docType, data)
	if err != nil {
		res.Status, res.Err = StatusFailed, err
		return res
	}
	res.Name, res.Status = doc.Name(), StatusCreated
	return res
}

// Package schema serves the DocType catalog: existence, ordered fields and modules.
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	"github.com/xdev-exe/cortyx/internal/logger"
)

// Service handles schema catalog reads and writes.
type Service struct {
	repo Repository
}

// New creates a schema service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// DocTypeExists reports whether name is a defined DocType. Blank names never exist.
func (s *Service) DocTypeExists(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}
	ok, err := s.repo.Exists(ctx, name)
	if err != nil {
		logger.FromContext(ctx).Error("doctype exists failed", append(logger.Op("doctype.exists", name, ""), zap.Error(err))...)
		return false, fmt.Errorf("doctype exists: %w", err)
	}
	return ok, nil
}

// GetDocType returns the full descriptor of name.
func (s *Service) GetDocType(ctx context.Context, name string) (doctype.DocType, error) {
	if strings.TrimSpace(name) == "" {
		return doctype.DocType{}, fmt.Errorf("blank name: %w", domain.ErrDocTypeNotFound)
	}
	dt, err := s.repo.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.FromContext(ctx).Error("get doctype failed", append(logger.Op("doctype.get", name, ""), zap.Error(err))...)
		}
		return doctype.DocType{}, fmt.Errorf("get doctype: %w", err)
	}
	return dt, nil
}

// GetFields returns the fields of name in field order. A DocType without
// fields yields an empty slice; an unknown one yields domain.ErrDocTypeNotFound.
func (s *Service) GetFields(ctx context.Context, name string) ([]doctype.Field, error) {
	dt, err := s.GetDocType(ctx, name)
	if err != nil {
		return nil, err
	}
	return dt.Fields(), nil
}

// GetModules groups DocTypes by declared module, sorted by module name.
func (s *Service) GetModules(ctx context.Context) ([]doctype.Module, error) {
	members, err := s.repo.Memberships(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("list modules failed", append(logger.Op("doctype.modules", "", ""), zap.Error(err))...)
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return doctype.GroupModules(members), nil
}

// DocTypeNames lists every defined DocType, sorted.
func (s *Service) DocTypeNames(ctx context.Context) ([]string, error) {
	members, err := s.repo.Memberships(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctypes: %w", err)
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.DocType)
	}
	return names, nil
}

// SaveDocType validates and upserts dt, replacing its fields.
func (s *Service) SaveDocType(ctx context.Context, dt doctype.DocType) error {
	if strings.TrimSpace(dt.Name()) == "" {
		return fmt.Errorf("save doctype: %w: name is required", domain.ErrInvalidSchema)
	}
	if err := s.repo.Save(ctx, dt); err != nil {
		return fmt.Errorf("save doctype: %w", err)
	}
	logger.FromContext(ctx).Info("doctype saved",
		zap.String("doctype", dt.Name()),
		zap.Int("fields", len(dt.Fields())),
		zap.Strings("modules", dt.Modules()),
	)
	return nil
}

// EnsureConstraints creates the catalog's uniqueness constraints.
func (s *Service) EnsureConstraints(ctx context.Context) error {
	if err := s.repo.EnsureConstraints(ctx); err != nil {
		return fmt.Errorf("ensure constraints: %w", err)
	}
	return nil
}

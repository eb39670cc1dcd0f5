// Package schemacache decorates the schema repository with a valkey cache.
// Only found results are cached; writes invalidate the affected keys.
package schemacache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/db"
	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/domain/doctype"
)

const (
	keyPrefix  = domain.KeyPrefix + "schema:"
	modulesKey = keyPrefix + "modules"

	kindDocType = "doctype"
	kindModules = "modules"
)

// store is the consumer interface for the cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Repository is the decorated schema repository.
type Repository interface {
	Exists(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) (doctype.DocType, error)
	Memberships(ctx context.Context) ([]doctype.Membership, error)
	Save(ctx context.Context, dt doctype.DocType) error
	EnsureConstraints(ctx context.Context) error
}

// Repo caches DocType descriptors and module memberships.
type Repo struct {
	inner      Repository
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with labels "kind" and "result" ("hit"/"miss"/"error").
func New(inner Repository, s store, ttl time.Duration, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Repo {
	return &Repo{inner: inner, store: s, ttl: ttl, cacheTotal: cacheTotal, logger: logger}
}

// Exists answers from a cached descriptor when one is present.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	var cached cachedDocType
	if r.load(ctx, kindDocType, docTypeKey(name), &cached) {
		return true, nil
	}
	return r.inner.Exists(ctx, name) //nolint:wrapcheck // pass-through decorator
}

// Get returns the cached descriptor or loads and caches it.
func (r *Repo) Get(ctx context.Context, name string) (doctype.DocType, error) {
	key := docTypeKey(name)

	var cached cachedDocType
	if r.load(ctx, kindDocType, key, &cached) {
		return cached.toDomain(), nil
	}

	dt, err := r.inner.Get(ctx, name)
	if err != nil {
		return doctype.DocType{}, err //nolint:wrapcheck // pass-through decorator
	}
	r.put(ctx, key, fromDomain(dt))
	return dt, nil
}

// Memberships returns the cached membership list or loads and caches it.
func (r *Repo) Memberships(ctx context.Context) ([]doctype.Membership, error) {
	var cached []cachedMembership
	if r.load(ctx, kindModules, modulesKey, &cached) {
		return membershipsToDomain(cached), nil
	}

	members, err := r.inner.Memberships(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass-through decorator
	}
	r.put(ctx, modulesKey, membershipsFromDomain(members))
	return members, nil
}

// Save writes through and drops the DocType and module keys.
func (r *Repo) Save(ctx context.Context, dt doctype.DocType) error {
	if err := r.inner.Save(ctx, dt); err != nil {
		return err //nolint:wrapcheck // pass-through decorator
	}
	if err := r.store.Del(ctx, docTypeKey(dt.Name()), modulesKey); err != nil {
		r.logger.Warn("Failed to invalidate schema cache", zap.String("doctype", dt.Name()), zap.Error(err))
	}
	return nil
}

// EnsureConstraints passes through.
func (r *Repo) EnsureConstraints(ctx context.Context) error {
	return r.inner.EnsureConstraints(ctx) //nolint:wrapcheck // pass-through decorator
}

func (r *Repo) load(ctx context.Context, kind, key string, dst any) bool {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			r.inc(kind, "miss")
		} else {
			r.inc(kind, "error")
			r.logger.Warn("Failed to read schema cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.inc(kind, "error")
		r.logger.Warn("Failed to decode schema cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	r.inc(kind, "hit")
	return true
}

func (r *Repo) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("Failed to encode schema cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	if err := r.store.SetWithTTL(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("Failed to write schema cache", zap.String("key", key), zap.Error(err))
	}
}

func (r *Repo) inc(kind, result string) {
	if r.cacheTotal != nil {
		r.cacheTotal.WithLabelValues(kind, result).Inc()
	}
}

func docTypeKey(name string) string {
	return fmt.Sprintf("%sdoctype:%s", keyPrefix, name)
}

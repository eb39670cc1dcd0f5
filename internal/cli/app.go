package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/config"
	dbValkey "github.com/xdev-exe/cortyx/internal/db/valkey"
	"github.com/xdev-exe/cortyx/internal/domain"
	"github.com/xdev-exe/cortyx/internal/graph"
	logpkg "github.com/xdev-exe/cortyx/internal/logger"
	"github.com/xdev-exe/cortyx/internal/metrics"
	documentrepo "github.com/xdev-exe/cortyx/internal/repository/document"
	"github.com/xdev-exe/cortyx/internal/repository/embcache"
	knowledgerepo "github.com/xdev-exe/cortyx/internal/repository/knowledge"
	schemarepo "github.com/xdev-exe/cortyx/internal/repository/schema"
	"github.com/xdev-exe/cortyx/internal/repository/schemacache"
	openaiEmb "github.com/xdev-exe/cortyx/internal/transport/openai"
	documentuc "github.com/xdev-exe/cortyx/internal/usecase/document"
	healthuc "github.com/xdev-exe/cortyx/internal/usecase/health"
	knowledgeuc "github.com/xdev-exe/cortyx/internal/usecase/knowledge"
	schemauc "github.com/xdev-exe/cortyx/internal/usecase/schema"
)

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	graph  *graph.Manager
	valkey *dbValkey.Store

	schema    *schemauc.Service
	docRepo   *documentrepo.Repo
	documents *documentuc.Service
	// knowledge is nil when search is disabled.
	knowledge *knowledgeuc.Service
	health    *healthuc.Service
}

// newApp loads configuration for env and wires stores and services.
// The caller must call close.
func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg
	metrics.RegisterGraphMetrics()
	metrics.RegisterEmbeddingMetrics()

	mgr, err := graph.NewManager(graph.Config{
		URI:                          cfg.Graph.URI,
		Username:                     cfg.Graph.Username,
		Password:                     cfg.Graph.Password,
		Database:                     cfg.Graph.Database,
		MaxConnectionPoolSize:        cfg.Graph.MaxPoolSize,
		ConnectionAcquisitionTimeout: time.Duration(cfg.Graph.AcquisitionTimeoutSec) * time.Second,
	}, graph.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("create graph manager: %w", err)
	}
	a.graph = mgr

	if err := mgr.WaitForReady(ctx, time.Duration(cfg.Graph.ReadinessTimeoutSec)*time.Second); err != nil {
		return fmt.Errorf("graph store not ready: %w", err)
	}
	a.logger.Info("Connected to graph store", zap.String("database", cfg.Graph.Database))

	if cfg.Valkey.Enabled() {
		store, err := dbValkey.NewStore(dbValkey.Config{
			Addrs:    cfg.Valkey.Addrs,
			Password: cfg.Valkey.Password,
		})
		if err != nil {
			return fmt.Errorf("create valkey store: %w", err)
		}
		a.valkey = store
		if err := store.WaitForReady(ctx, time.Duration(cfg.Valkey.ReadinessTimeout)*time.Second); err != nil {
			return fmt.Errorf("valkey not ready: %w", err)
		}
		a.logger.Info("Connected to valkey", zap.Strings("addrs", cfg.Valkey.Addrs))
	}

	return a.wireServices(ctx, mgr, mgr)
}

// wireServices builds the repositories and use cases over runner and makes
// sure the graph constraints exist before anything writes.
func (a *app) wireServices(ctx context.Context, runner graph.Runner, pinger healthuc.Pinger) error {
	cfg := a.cfg
	var schemaRepo schemauc.Repository = schemarepo.New(runner)
	if cfg.SchemaCache.Enabled && a.valkey != nil {
		schemaRepo = schemacache.New(
			schemaRepo, a.valkey, time.Duration(cfg.SchemaCache.TTLSec)*time.Second,
			metrics.SchemaCacheTotal, a.logger,
		)
	}
	a.schema = schemauc.New(schemaRepo)
	if err := a.schema.EnsureConstraints(ctx); err != nil {
		return fmt.Errorf("ensure graph constraints: %w", err)
	}

	a.docRepo = documentrepo.New(runner)
	a.documents = documentuc.New(a.docRepo).
		WithPagination(cfg.Pagination.DefaultPageSize, cfg.Pagination.MaxPageSize)

	healthOpts := []healthuc.Option{}
	if a.valkey != nil {
		healthOpts = append(healthOpts, healthuc.WithValkey(a.valkey))
	}

	if cfg.Search.Enabled && a.valkey != nil {
		a.knowledge = a.buildKnowledge()
		if err := a.knowledge.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("ensure knowledge index: %w", err)
		}
		a.documents.WithListener(a.knowledge)
		healthOpts = append(healthOpts, healthuc.WithEmbedding(a.knowledge))
	}

	a.health = healthuc.New(pinger, healthOpts...)
	return nil
}

// buildKnowledge assembles the embedder chain (OpenAI -> valkey cache) and the knowledge service.
func (a *app) buildKnowledge() *knowledgeuc.Service {
	prov := a.cfg.Search.Provider
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     prov.APIKey,
		BaseURL:    prov.BaseURL,
		Model:      prov.Model,
		Dimensions: prov.Dimensions,
		Provider:   prov.Name,
		Logger:     a.logger,
	})
	embedder := embcache.New(base, a.valkey, prov.Model, metrics.EmbeddingCacheTotal, a.logger).
		WithTTL(time.Duration(a.cfg.Search.EmbeddingCacheTTLSec) * time.Second)

	repo := knowledgerepo.New(a.valkey, prov.Dimensions, knowledgerepo.HNSWConfig{
		M:           a.cfg.Search.HNSWM,
		EFConstruct: a.cfg.Search.HNSWEFConstruct,
	})

	a.logger.Info("Knowledge search enabled",
		zap.String("provider", prov.Name),
		zap.String("model", prov.Model),
		zap.Int("dimensions", prov.Dimensions),
	)
	svc := knowledgeuc.New(repo, embedder, a.schema, a.docRepo, a.cfg.Search.TopK, metrics.KnowledgeIndexTotal)
	if instr := a.cfg.Search.QueryInstruction; instr != "" {
		svc.WithQueryEmbedder(domain.NewInstructionEmbedder(embedder, instr))
	}
	return svc
}

// close releases stores and flushes the logger.
func (a *app) close() {
	if a.graph != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.graph.Close(ctx); err != nil {
			a.logger.Warn("graph close failed", zap.Error(err))
		}
	}
	if a.valkey != nil {
		a.valkey.Close()
	}
	_ = a.logger.Sync()
}

package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the graph store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as check keys.
const (
	ComponentGraph     = "graph"
	ComponentValkey    = "valkey"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	graph     Pinger
	valkey    Pinger
	embedding EmbeddingChecker
}

// Option configures optional checks.
type Option func(*Service)

// WithValkey adds the valkey check.
func WithValkey(p Pinger) Option {
	return func(s *Service) { s.valkey = p }
}

// WithEmbedding adds the embedding provider check.
func WithEmbedding(c EmbeddingChecker) Option {
	return func(s *Service) { s.embedding = c }
}

// New creates a Service. The graph check is always run.
func New(graph Pinger, opts ...Option) *Service {
	s := &Service{graph: graph}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all configured components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks[ComponentGraph] = run(ctx, ComponentGraph, s.graph.Ping)
	if s.valkey != nil {
		checks[ComponentValkey] = run(ctx, ComponentValkey, s.valkey.Ping)
	}
	if s.embedding != nil {
		checks[ComponentEmbedding] = run(ctx, ComponentEmbedding, s.embedding.HealthCheck)
	}

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == ComponentGraph {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func run(ctx context.Context, name string, check func(context.Context) error) CheckResult {
	if err := check(ctx); err != nil {
		logger.FromContext(ctx).Warn("health check failed", zap.String("component", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}

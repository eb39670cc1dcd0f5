package cortyx

import (
	"time"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/graph"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	graph            graph.Config
	readinessTimeout time.Duration

	defaultPageSize int
	maxPageSize     int

	logger *zap.Logger
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{
		graph:            graph.DefaultConfig(),
		readinessTimeout: defaultReadinessTimeout,
		logger:           zap.NewNop(),
	}
}

// WithNeo4j sets the connection URI and credentials.
func WithNeo4j(uri, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.graph.URI = uri
		c.graph.Username = username
		c.graph.Password = password
	})
}

// WithDatabase selects the Neo4j database. Defaults to "cortyx-dev".
func WithDatabase(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.graph.Database = name
	})
}

// WithPool sets the maximum pool size and how long to wait for a pooled connection.
// Defaults: 50 connections, 60s.
func WithPool(maxSize int, acquisitionTimeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.graph.MaxConnectionPoolSize = maxSize
		c.graph.ConnectionAcquisitionTimeout = acquisitionTimeout
	})
}

// WithReadinessTimeout bounds how long New waits for the store. Zero skips the wait.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithPagination sets the default and maximum page sizes of List.
// A maximum of 0 leaves page sizes unbounded.
func WithPagination(defaultPageSize, maxPageSize int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultPageSize = defaultPageSize
		c.maxPageSize = maxPageSize
	})
}

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		if l != nil {
			c.logger = l
		}
	})
}

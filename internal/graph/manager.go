package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/metrics"
)

// Compile-time check: Manager implements Runner.
var _ Runner = (*Manager)(nil)

// Manager owns the pooled connection to the graph store.
//
// The driver is created on first use and shared by every operation until Close.
// Each ExecuteRead/ExecuteWrite call opens its own session and closes it before
// returning, so a Manager is safe for concurrent use.
type Manager struct {
	cfg    Config
	logger *zap.Logger
	open   opener

	mu     sync.Mutex
	drv    driver
	closed bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager validates cfg and returns a Manager. No connection is made yet.
func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("graph config: %w", err)
	}
	m := &Manager{
		cfg:    cfg,
		logger: zap.NewNop(),
		open:   openNeo4j,
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

// ExecuteRead runs fn in a read-mode transaction.
func (m *Manager) ExecuteRead(ctx context.Context, op string, fn TxFunc) error {
	return m.execute(ctx, op, neo4j.AccessModeRead, fn)
}

// ExecuteWrite runs fn in a write-mode transaction.
func (m *Manager) ExecuteWrite(ctx context.Context, op string, fn TxFunc) error {
	return m.execute(ctx, op, neo4j.AccessModeWrite, fn)
}

// Ping runs a trivial read to confirm the store answers queries.
func (m *Manager) Ping(ctx context.Context) error {
	_, err := Read(ctx, m, "ping", Statement{Cypher: "RETURN 1 AS ok"})
	return err
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (m *Manager) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for graph store: %w", lastErr)
			}
			return fmt.Errorf("timeout waiting for graph store: %w", ctx.Err())
		case <-ticker.C:
			if lastErr = m.Ping(ctx); lastErr == nil {
				return nil
			}
			if errors.Is(lastErr, ErrClosed) {
				return lastErr
			}
		}
	}
}

// Close tears down the pooled driver. Later operations fail with ErrClosed.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.drv == nil {
		return nil
	}
	err := m.drv.close(ctx)
	m.drv = nil
	if err != nil {
		return &Error{Op: "close", Kind: KindConnection, Err: err}
	}
	m.logger.Info("graph driver closed")
	return nil
}

// acquire returns the shared driver, creating it on first use.
func (m *Manager) acquire() (driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, &Error{Op: "acquire", Kind: KindConnection, Err: ErrClosed}
	}
	if m.drv != nil {
		return m.drv, nil
	}

	d, err := m.open(m.cfg)
	if err != nil {
		return nil, &Error{Op: "acquire", Kind: KindConnection, Err: fmt.Errorf("create driver: %w", err)}
	}
	m.drv = d
	m.logger.Info("graph driver created",
		zap.String("uri", m.cfg.URI),
		zap.String("database", m.cfg.Database),
		zap.Int("max_pool_size", m.cfg.MaxConnectionPoolSize),
		zap.Duration("acquisition_timeout", m.cfg.ConnectionAcquisitionTimeout),
	)
	return d, nil
}

func (m *Manager) execute(ctx context.Context, op string, mode neo4j.AccessMode, fn TxFunc) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveGraphQuery(op, modeLabel(mode), statusLabel(err), time.Since(start))
	}()

	d, err := m.acquire()
	if err != nil {
		return err
	}

	sess := d.session(ctx, neo4j.SessionConfig{
		DatabaseName: m.cfg.Database,
		AccessMode:   mode,
	})
	defer func() {
		if cerr := sess.close(ctx); cerr != nil {
			m.logger.Warn("graph session close failed", zap.String("op", op), zap.Error(cerr))
		}
	}()

	// fnErr keeps the callback's own error apart from driver failures
	// raised while opening or committing the transaction.
	var fnErr error
	work := func(tx Tx) error {
		fnErr = fn(ctx, tx)
		return fnErr
	}

	if mode == neo4j.AccessModeRead {
		err = sess.executeRead(ctx, work)
	} else {
		err = sess.executeWrite(ctx, work)
	}
	if err == nil {
		return nil
	}
	if fnErr != nil {
		var gerr *Error
		if errors.As(fnErr, &gerr) {
			return &Error{Op: op, Kind: gerr.Kind, Err: gerr.Err}
		}
		return fnErr
	}
	return classify(op, err)
}

func modeLabel(mode neo4j.AccessMode) string {
	if mode == neo4j.AccessModeRead {
		return "read"
	}
	return "write"
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrConnection):
		return "connection_error"
	case errors.Is(err, ErrQuery):
		return "query_error"
	default:
		return "aborted"
	}
}

package cortyx

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/graph"
	logpkg "github.com/xdev-exe/cortyx/internal/logger"
	documentrepo "github.com/xdev-exe/cortyx/internal/repository/document"
	schemarepo "github.com/xdev-exe/cortyx/internal/repository/schema"
	documentuc "github.com/xdev-exe/cortyx/internal/usecase/document"
	schemauc "github.com/xdev-exe/cortyx/internal/usecase/schema"
)

const defaultReadinessTimeout = 10 * time.Second

// connection is the lifecycle side of the graph store.
type connection interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Client is the cortyx embedded entry point. It is safe for concurrent use.
type Client struct {
	conn   connection
	schema *schemauc.Service
	docs   *documentuc.Service
	logger *zap.Logger
}

// New creates a Client and waits until the graph store answers.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	mgr, err := graph.NewManager(cfg.graph, graph.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("cortyx: %w", err)
	}

	if cfg.readinessTimeout > 0 {
		if err := mgr.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
			_ = mgr.Close(ctx)
			return nil, fmt.Errorf("cortyx: graph store not ready: %w", err)
		}
	}

	return wireClient(mgr, mgr, cfg), nil
}

func wireClient(runner graph.Runner, conn connection, cfg *clientConfig) *Client {
	docSvc := documentuc.New(documentrepo.New(runner))
	if cfg.defaultPageSize > 0 || cfg.maxPageSize > 0 {
		docSvc = docSvc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	}

	return &Client{
		conn:   conn,
		schema: schemauc.New(schemarepo.New(runner)),
		docs:   docSvc,
		logger: cfg.logger,
	}
}

// Close releases the connection pool. Later calls fail.
func (c *Client) Close(ctx context.Context) error {
	if c.conn == nil {
		return nil
	}
	if err := c.conn.Close(ctx); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Ping checks graph store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EnsureConstraints creates the catalog's uniqueness constraints. It is idempotent.
func (c *Client) EnsureConstraints(ctx context.Context) error {
	return c.schema.EnsureConstraints(c.withLogger(ctx)) //nolint:wrapcheck // service wraps
}

// DocTypes lists every defined DocType name, sorted.
func (c *Client) DocTypes(ctx context.Context) ([]string, error) {
	return c.schema.DocTypeNames(c.withLogger(ctx)) //nolint:wrapcheck // service wraps
}

// DocType returns the full descriptor of name.
func (c *Client) DocType(ctx context.Context, name string) (DocType, error) {
	dt, err := c.schema.GetDocType(c.withLogger(ctx), name)
	if err != nil {
		return DocType{}, err //nolint:wrapcheck // service wraps
	}
	return DocType{Name: dt.Name(), Modules: dt.Modules(), Fields: fromFields(dt.Fields())}, nil
}

// SaveDocType creates or replaces a DocType with its fields.
func (c *Client) SaveDocType(ctx context.Context, dt DocType) error {
	internal, err := toDocType(dt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}
	return c.schema.SaveDocType(c.withLogger(ctx), internal) //nolint:wrapcheck // service wraps
}

// Fields returns the ordered fields of a DocType.
func (c *Client) Fields(ctx context.Context, docType string) ([]Field, error) {
	fields, err := c.schema.GetFields(c.withLogger(ctx), docType)
	if err != nil {
		return nil, err //nolint:wrapcheck // service wraps
	}
	return fromFields(fields), nil
}

// Modules groups DocTypes by module, sorted by module name.
func (c *Client) Modules(ctx context.Context) ([]Module, error) {
	mods, err := c.schema.GetModules(c.withLogger(ctx))
	if err != nil {
		return nil, err //nolint:wrapcheck // service wraps
	}
	return fromModules(mods), nil
}

// List returns one page of documents, most recently modified first.
// A pageSize of 0 selects the default page size.
func (c *Client) List(ctx context.Context, docType string, page, pageSize int) (ListResult, error) {
	if pageSize == 0 {
		pageSize = c.docs.DefaultPageSize()
	}
	res, err := c.docs.List(c.withLogger(ctx), docType, page, pageSize)
	if err != nil {
		return ListResult{}, err //nolint:wrapcheck // service wraps
	}
	return fromListResult(res), nil
}

// Get returns a document by name or element id.
func (c *Client) Get(ctx context.Context, docType, id string) (Document, error) {
	d, err := c.docs.Get(c.withLogger(ctx), docType, id)
	if err != nil {
		return nil, err //nolint:wrapcheck // service wraps
	}
	return fromDocument(d), nil
}

// Create stores a new document. Without a "name" the next name of the
// DocType's naming series is assigned.
func (c *Client) Create(ctx context.Context, docType string, data Document) (Document, error) {
	d, err := c.docs.Create(c.withLogger(ctx), docType, map[string]any(data))
	if err != nil {
		return nil, err //nolint:wrapcheck // service wraps
	}
	return fromDocument(d), nil
}

// Update merges patch into a document. A nil value removes the property.
func (c *Client) Update(ctx context.Context, docType, id string, patch Document) (Document, error) {
	d, err := c.docs.Update(c.withLogger(ctx), docType, id, map[string]any(patch))
	if err != nil {
		return nil, err //nolint:wrapcheck // service wraps
	}
	return fromDocument(d), nil
}

// Delete removes a document and its relationships. It reports whether one existed.
func (c *Client) Delete(ctx context.Context, docType, id string) (bool, error) {
	return c.docs.Delete(c.withLogger(ctx), docType, id) //nolint:wrapcheck // service wraps
}

func (c *Client) withLogger(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, logpkg.FromContextOr(ctx, c.logger))
}

package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// driver and session narrow the neo4j API to what the Manager needs,
// so tests can substitute fakes for a live server.
type driver interface {
	session(ctx context.Context, cfg neo4j.SessionConfig) session
	close(ctx context.Context) error
}

type session interface {
	executeRead(ctx context.Context, work func(Tx) error) error
	executeWrite(ctx context.Context, work func(Tx) error) error
	close(ctx context.Context) error
}

type opener func(cfg Config) (driver, error)

func openNeo4j(cfg Config) (driver, error) {
	d, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
			// Failures surface to the caller immediately.
			c.MaxTransactionRetryTime = 0
		},
	)
	if err != nil {
		return nil, err
	}
	return &neo4jDriver{d: d}, nil
}

type neo4jDriver struct {
	d neo4j.DriverWithContext
}

func (n *neo4jDriver) session(ctx context.Context, cfg neo4j.SessionConfig) session {
	return &neo4jSession{s: n.d.NewSession(ctx, cfg)}
}

func (n *neo4jDriver) close(ctx context.Context) error {
	return n.d.Close(ctx)
}

type neo4jSession struct {
	s neo4j.SessionWithContext
}

func (n *neo4jSession) executeRead(ctx context.Context, work func(Tx) error) error {
	_, err := n.s.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(&managedTx{tx: tx})
	})
	return err
}

func (n *neo4jSession) executeWrite(ctx context.Context, work func(Tx) error) error {
	_, err := n.s.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, work(&managedTx{tx: tx})
	})
	return err
}

func (n *neo4jSession) close(ctx context.Context) error {
	return n.s.Close(ctx)
}

type managedTx struct {
	tx neo4j.ManagedTransaction
}

// Run executes st and collects every record, normalizing values on the way out.
func (m *managedTx) Run(ctx context.Context, st Statement) ([]Record, error) {
	res, err := m.tx.Run(ctx, st.Cypher, st.Params)
	if err != nil {
		return nil, classify("run", err)
	}
	recs, err := res.Collect(ctx)
	if err != nil {
		return nil, classify("collect", err)
	}
	out := make([]Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toRecord(rec.Keys, rec.Values))
	}
	return out, nil
}

func toRecord(keys []string, values []any) Record {
	r := make(Record, len(keys))
	for i, k := range keys {
		if i < len(values) {
			r[k] = Normalize(values[i])
		}
	}
	return r
}

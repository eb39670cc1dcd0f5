// Package graphtest provides an in-process graph.Runner for repository tests.
package graphtest

import (
	"context"
	"sync"

	"github.com/xdev-exe/cortyx/internal/graph"
)

// Call is one statement seen by the Runner.
type Call struct {
	Op        string
	Write     bool
	Statement graph.Statement
}

// HandlerFunc answers a statement.
type HandlerFunc func(call Call) ([]graph.Record, error)

// Runner runs every statement through a handler and records it.
// Records returned by the handler are normalized the way the real driver
// adapter normalizes them.
type Runner struct {
	mu      sync.Mutex
	handler HandlerFunc
	calls   []Call
}

// NewRunner returns a Runner answering with h. A nil h answers every statement with no rows.
func NewRunner(h HandlerFunc) *Runner {
	return &Runner{handler: h}
}

// ExecuteRead implements graph.Runner.
func (r *Runner) ExecuteRead(ctx context.Context, op string, fn graph.TxFunc) error {
	return fn(ctx, &tx{r: r, op: op})
}

// ExecuteWrite implements graph.Runner.
func (r *Runner) ExecuteWrite(ctx context.Context, op string, fn graph.TxFunc) error {
	return fn(ctx, &tx{r: r, op: op, write: true})
}

// Calls returns the statements run so far.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Last returns the most recent call. It panics when nothing ran.
func (r *Runner) Last() Call {
	calls := r.Calls()
	return calls[len(calls)-1]
}

type tx struct {
	r     *Runner
	op    string
	write bool
}

func (t *tx) Run(_ context.Context, st graph.Statement) ([]graph.Record, error) {
	call := Call{Op: t.op, Write: t.write, Statement: st}
	t.r.mu.Lock()
	t.r.calls = append(t.r.calls, call)
	h := t.r.handler
	t.r.mu.Unlock()

	if h == nil {
		return nil, nil
	}
	recs, err := h(call)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		graph.NormalizeRecord(rec)
	}
	return recs, nil
}

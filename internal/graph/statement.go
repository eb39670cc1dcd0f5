package graph

import (
	"context"
	"fmt"
)

// Statement is a Cypher query with its bound parameters.
type Statement struct {
	Cypher string
	Params map[string]any
}

// Record is one result row keyed by the RETURN aliases. Values are normalized.
type Record map[string]any

// String returns the value at key as a string, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the value at key as int64. Floats are truncated; other types yield 0.
func (r Record) Int(key string) int64 {
	switch n := r[key].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Bool returns the value at key as a boolean.
func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Map returns the value at key as a property map, or nil.
func (r Record) Map(key string) map[string]any {
	m, _ := r[key].(map[string]any)
	return m
}

// Strings returns the value at key as a string slice, skipping non-string items.
func (r Record) Strings(key string) []string {
	items, _ := r[key].([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Tx runs statements inside a managed transaction.
type Tx interface {
	Run(ctx context.Context, st Statement) ([]Record, error)
}

// TxFunc is the unit of work executed inside a transaction.
type TxFunc func(ctx context.Context, tx Tx) error

// Runner executes units of work in read or write mode.
type Runner interface {
	ExecuteRead(ctx context.Context, op string, fn TxFunc) error
	ExecuteWrite(ctx context.Context, op string, fn TxFunc) error
}

// Read runs a single statement in read mode and returns its records.
func Read(ctx context.Context, r Runner, op string, st Statement) ([]Record, error) {
	var out []Record
	err := r.ExecuteRead(ctx, op, func(ctx context.Context, tx Tx) error {
		recs, err := tx.Run(ctx, st)
		out = recs
		return err
	})
	return out, err
}

// Write runs a single statement in write mode and returns its records.
func Write(ctx context.Context, r Runner, op string, st Statement) ([]Record, error) {
	var out []Record
	err := r.ExecuteWrite(ctx, op, func(ctx context.Context, tx Tx) error {
		recs, err := tx.Run(ctx, st)
		out = recs
		return err
	})
	return out, err
}

// Single returns the only record of recs, or nil when recs is empty.
func Single(recs []Record) (Record, error) {
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return recs[0], nil
	default:
		return nil, fmt.Errorf("expected at most one record, got %d", len(recs))
	}
}

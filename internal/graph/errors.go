package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Sentinel errors for graph operations. *Error matches them by kind via errors.Is.
var (
	ErrConnection = errors.New("graph: connection failure")
	ErrQuery      = errors.New("graph: query failure")
	ErrClosed     = errors.New("graph: manager closed")
)

// Kind classifies a store failure.
type Kind uint8

// Failure kinds.
const (
	KindConnection Kind = iota + 1
	KindQuery
)

func (k Kind) String() string {
	switch k {
	case KindConnection:
		return "connection failure"
	case KindQuery:
		return "query failure"
	default:
		return "unknown failure"
	}
}

// Error wraps a driver error with the logical operation and its kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrConnection) and errors.Is(err, ErrQuery) match by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrConnection:
		return e.Kind == KindConnection
	case ErrQuery:
		return e.Kind == KindQuery
	}
	return false
}

// classify turns a driver error into *Error. Errors already classified pass through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *Error
	if errors.As(err, &gerr) {
		return err
	}
	return &Error{Op: op, Kind: kindOf(err), Err: err}
}

func kindOf(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindConnection
	}
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		// Auth and transient server states mean the store is unusable, not the query.
		if strings.HasPrefix(nerr.Code, "Neo.ClientError.Security.") ||
			strings.HasPrefix(nerr.Code, "Neo.TransientError.") {
			return KindConnection
		}
		return KindQuery
	}
	var uerr *neo4j.UsageError
	if errors.As(err, &uerr) {
		return KindQuery
	}
	return KindConnection
}

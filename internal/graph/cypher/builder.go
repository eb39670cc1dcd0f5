package cypher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xdev-exe/cortyx/internal/graph"
)

// Builder is a fluent builder for graph.Statement.
//
// Patterns and expressions passed to Match, Where, Set and the like must be
// static text written by the programmer. Runtime names go through the *Node
// methods, runtime values through Param.
type Builder struct {
	clauses []string
	params  map[string]any
	err     error
}

// New starts an empty statement.
func New() *Builder {
	return &Builder{params: make(map[string]any)}
}

// MatchNode adds MATCH (v:`label`).
func (b *Builder) MatchNode(variable, label string) *Builder {
	return b.nodeClause("MATCH", variable, label)
}

// CreateNode adds CREATE (v:`label`).
func (b *Builder) CreateNode(variable, label string) *Builder {
	return b.nodeClause("CREATE", variable, label)
}

// Match adds a MATCH clause with a static pattern.
func (b *Builder) Match(pattern string) *Builder { return b.add("MATCH " + pattern) }

// OptionalMatch adds an OPTIONAL MATCH clause with a static pattern.
func (b *Builder) OptionalMatch(pattern string) *Builder { return b.add("OPTIONAL MATCH " + pattern) }

// Create adds a CREATE clause with a static pattern.
func (b *Builder) Create(pattern string) *Builder { return b.add("CREATE " + pattern) }

// Merge adds a MERGE clause with a static pattern.
func (b *Builder) Merge(pattern string) *Builder { return b.add("MERGE " + pattern) }

// OnCreateSet adds ON CREATE SET after a MERGE.
func (b *Builder) OnCreateSet(expr string) *Builder { return b.add("ON CREATE SET " + expr) }

// Where adds a WHERE clause.
func (b *Builder) Where(expr string) *Builder { return b.add("WHERE " + expr) }

// With adds a WITH clause.
func (b *Builder) With(expr string) *Builder { return b.add("WITH " + expr) }

// Unwind adds an UNWIND clause.
func (b *Builder) Unwind(expr string) *Builder { return b.add("UNWIND " + expr) }

// Set adds a SET clause.
func (b *Builder) Set(expr string) *Builder { return b.add("SET " + expr) }

// DetachDelete adds a DETACH DELETE clause.
func (b *Builder) DetachDelete(variables string) *Builder { return b.add("DETACH DELETE " + variables) }

// Return adds a RETURN clause.
func (b *Builder) Return(expr string) *Builder { return b.add("RETURN " + expr) }

// OrderBy adds an ORDER BY clause.
func (b *Builder) OrderBy(exprs ...string) *Builder {
	if len(exprs) == 0 {
		return b.fail(fmt.Errorf("cypher: ORDER BY needs at least one expression"))
	}
	return b.add("ORDER BY " + strings.Join(exprs, ", "))
}

// Skip adds SKIP $name bound to n.
func (b *Builder) Skip(name string, n int) *Builder {
	if n < 0 {
		return b.fail(fmt.Errorf("cypher: negative SKIP %d", n))
	}
	return b.add("SKIP $" + name).Param(name, int64(n))
}

// Limit adds LIMIT $name bound to n.
func (b *Builder) Limit(name string, n int) *Builder {
	if n < 0 {
		return b.fail(fmt.Errorf("cypher: negative LIMIT %d", n))
	}
	return b.add("LIMIT $" + name).Param(name, int64(n))
}

// Param binds a parameter value.
func (b *Builder) Param(name string, value any) *Builder {
	if !isParamName(name) {
		return b.fail(fmt.Errorf("cypher: invalid parameter name %q", name))
	}
	b.params[name] = value
	return b
}

// Build validates the statement and returns it. Every $parameter referenced
// outside quoted names and string literals must be bound.
func (b *Builder) Build() (graph.Statement, error) {
	if b.err != nil {
		return graph.Statement{}, b.err
	}
	if len(b.clauses) == 0 {
		return graph.Statement{}, fmt.Errorf("cypher: empty statement")
	}
	cypher := strings.Join(b.clauses, "\n")

	var missing []string
	for _, name := range referencedParams(cypher) {
		if _, ok := b.params[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return graph.Statement{}, fmt.Errorf("cypher: unbound parameters: %s", strings.Join(missing, ", "))
	}

	params := make(map[string]any, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	return graph.Statement{Cypher: cypher, Params: params}, nil
}

func (b *Builder) nodeClause(keyword, variable, label string) *Builder {
	q, err := QuoteIdentifier(label)
	if err != nil {
		return b.fail(fmt.Errorf("%s label: %w", strings.ToLower(keyword), err))
	}
	return b.add(keyword + " (" + variable + ":" + q + ")")
}

func (b *Builder) add(clause string) *Builder {
	b.clauses = append(b.clauses, clause)
	return b
}

func (b *Builder) fail(err error) *Builder {
	if b.err == nil {
		b.err = err
	}
	return b
}

func isParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if !isParamRune(r, i == 0) {
			return false
		}
	}
	return true
}

func isParamRune(r rune, first bool) bool {
	switch {
	case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return !first
	default:
		return false
	}
}

// referencedParams lists $names in cypher, skipping quoted identifiers and
// string literals. Each name is reported once, in order of first use.
func referencedParams(cypher string) []string {
	var (
		names []string
		seen  = make(map[string]bool)
		quote rune
	)
	runes := []rune(cypher)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			switch {
			case r == '\\' && quote != '`':
				i++
			case r == quote:
				// Doubled backtick stays inside the identifier.
				if quote == '`' && i+1 < len(runes) && runes[i+1] == '`' {
					i++
					continue
				}
				quote = 0
			}
			continue
		}
		switch r {
		case '`', '\'', '"':
			quote = r
		case '$':
			j := i + 1
			for j < len(runes) && isParamRune(runes[j], j == i+1) {
				j++
			}
			if j > i+1 {
				name := string(runes[i+1 : j])
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
			i = j - 1
		}
	}
	return names
}

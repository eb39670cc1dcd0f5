package schema

import (
	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/cypher"
)

// Uniqueness constraints created by EnsureConstraints.
var constraintStatements = []graph.Statement{
	{Cypher: "CREATE CONSTRAINT doctype_name IF NOT EXISTS FOR (d:DocType) REQUIRE d.name IS UNIQUE"},
	{Cypher: "CREATE CONSTRAINT naming_series_doctype IF NOT EXISTS FOR (s:NamingSeries) REQUIRE s.doctype IS UNIQUE"},
}

func existsStatement(name string) (graph.Statement, error) {
	return cypher.New().
		Match("(d:DocType {name: $name})").
		Return("count(d) > 0 AS exists").
		Param("name", name).
		Build()
}

// getStatement yields one row even when the DocType is missing, so the
// found column tells "absent" apart from "present without fields".
func getStatement(name string) (graph.Statement, error) {
	return cypher.New().
		OptionalMatch("(d:DocType {name: $name})").
		OptionalMatch("(d)-[:HAS_FIELD]->(f:DocField)").
		Return("d IS NOT NULL AS found, d.modules AS modules, d.field_order AS field_order, collect(f) AS fields").
		Param("name", name).
		Build()
}

func membershipsStatement() (graph.Statement, error) {
	return cypher.New().
		Match("(d:DocType)").
		Return("d.name AS name, coalesce(d.modules, []) AS modules").
		OrderBy("name").
		Build()
}

// saveStatement upserts the DocType and replaces its fields in one statement.
func saveStatement(name string, modules, fieldOrder []string, fields []map[string]any) (graph.Statement, error) {
	return cypher.New().
		Merge("(d:DocType {name: $name})").
		Set("d.modules = $modules, d.field_order = $field_order").
		With("d").
		OptionalMatch("(d)-[:HAS_FIELD]->(old:DocField)").
		DetachDelete("old").
		With("DISTINCT d").
		Unwind("$fields AS field").
		Create("(d)-[:HAS_FIELD]->(f:DocField)").
		Set("f = field").
		Return("count(f) AS fields").
		Param("name", name).
		Param("modules", modules).
		Param("field_order", fieldOrder).
		Param("fields", fields).
		Build()
}

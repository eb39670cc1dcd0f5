package document

import (
	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/cypher"
)

// matchByID selects the node named id, falling back to the node whose
// element id is id. A name match wins when both exist.
func matchByID(docType, id string) *cypher.Builder {
	return cypher.New().
		MatchNode("n", docType).
		Where("n.name = $id OR elementId(n) = $id").
		With("n").
		OrderBy("CASE WHEN n.name = $id THEN 0 ELSE 1 END").
		Limit("limit", 1).
		Param("id", id)
}

const returnDoc = "n AS doc, elementId(n) AS element_id"

func countStatement(docType string) (graph.Statement, error) {
	return cypher.New().
		MatchNode("n", docType).
		Return("count(n) AS total").
		Build()
}

// pageStatement orders by last modification, then creation; nodes with
// neither go last and element id breaks ties.
func pageStatement(docType string, skip, limit int) (graph.Statement, error) {
	return cypher.New().
		MatchNode("n", docType).
		With("n, coalesce(n.modified, n.creation) AS ts").
		Return(returnDoc + ", ts").
		OrderBy("ts IS NULL", "ts DESC", "element_id").
		Skip("skip", skip).
		Limit("limit", limit).
		Build()
}

func getStatement(docType, id string) (graph.Statement, error) {
	return matchByID(docType, id).
		Return(returnDoc).
		Build()
}

func nextNameStatement(docType string) (graph.Statement, error) {
	return cypher.New().
		Merge("(s:NamingSeries {doctype: $doctype})").
		OnCreateSet("s.current = 0").
		Set("s.current = s.current + 1").
		Return("s.current AS current").
		Param("doctype", docType).
		Build()
}

func nameTakenStatement(docType, name string) (graph.Statement, error) {
	return cypher.New().
		MatchNode("n", docType).
		Where("n.name = $name").
		Return("count(n) > 0 AS taken").
		Param("name", name).
		Build()
}

func createStatement(docType, name string, props map[string]any) (graph.Statement, error) {
	return cypher.New().
		With("datetime() AS now").
		CreateNode("n", docType).
		Set("n = $props, n.name = $name, n.creation = now, n.modified = now").
		Return(returnDoc).
		Param("props", props).
		Param("name", name).
		Build()
}

func updateStatement(docType, id string, props map[string]any) (graph.Statement, error) {
	return matchByID(docType, id).
		Set("n += $props, n.modified = datetime()").
		Return(returnDoc).
		Param("props", props).
		Build()
}

func deleteStatement(docType, id string) (graph.Statement, error) {
	return matchByID(docType, id).
		DetachDelete("n").
		Return("count(*) AS deleted").
		Build()
}

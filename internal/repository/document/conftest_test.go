package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/graphtest"
)

// assertStatement compares st against testdata/golden/<name>.golden.
func assertStatement(t *testing.T, name string, st graph.Statement) {
	t.Helper()
	params, err := json.MarshalIndent(st.Params, "", "  ")
	require.NoError(t, err)

	var b strings.Builder
	b.WriteString(st.Cypher)
	b.WriteString("\n-- params\n")
	b.Write(params)
	b.WriteString("\n")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(b.String()))
}

// docRecord is a row shaped like returnDoc.
func docRecord(elementID string, props map[string]any) graph.Record {
	return graph.Record{"doc": props, "element_id": elementID}
}

// routeHandler answers statements by the first keyword fragment their Cypher contains.
func routeHandler(routes map[string]func(graphtest.Call) ([]graph.Record, error)) graphtest.HandlerFunc {
	return func(call graphtest.Call) ([]graph.Record, error) {
		for fragment, h := range routes {
			if strings.Contains(call.Statement.Cypher, fragment) {
				return h(call)
			}
		}
		return nil, nil
	}
}

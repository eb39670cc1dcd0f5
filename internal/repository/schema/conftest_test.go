package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/xdev-exe/cortyx/internal/domain/doctype"
	"github.com/xdev-exe/cortyx/internal/graph"
)

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

func mustField(t *testing.T, s doctype.Spec) doctype.Field {
	t.Helper()
	f, err := doctype.NewField(s)
	require.NoError(t, err)
	return f
}

func salesInvoice(t *testing.T) doctype.DocType {
	t.Helper()
	dt, err := doctype.New("Sales Invoice", []string{"Accounts"}, []doctype.Field{
		mustField(t, doctype.Spec{Fieldname: "customer", Label: "Customer", Fieldtype: doctype.Link, Options: "Customer", Reqd: true, InListView: true}),
		mustField(t, doctype.Spec{Fieldname: "grand_total", Label: "Grand Total", Fieldtype: doctype.Currency, Description: "Total incl. tax", ReadOnly: true}),
	})
	require.NoError(t, err)
	return dt
}

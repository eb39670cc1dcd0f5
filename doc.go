// Package cortyx embeds the cortyx document engine in Go programs.
//
// A Client talks to Neo4j directly, without the HTTP server:
//
//	client, err := cortyx.New(ctx,
//	    cortyx.WithNeo4j("neo4j://localhost", "neo4j", "password"),
//	    cortyx.WithDatabase("cortyx-dev"),
//	)
//	if err != nil { ... }
//	defer client.Close(ctx)
//
//	fields, _ := client.Fields(ctx, "Customer")
//	doc, _ := client.Create(ctx, "Customer", cortyx.Document{"customer_name": "Acme"})
//	page, _ := client.List(ctx, "Customer", 1, 20)
//
// Documents are flat property maps. Every DocType shares the same API; the
// DocType name selects the node label.
package cortyx

//go:build integration

package graphtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xdev-exe/cortyx/internal/graph"
)

// StartNeo4j runs a neo4j:5 container for the test and returns a Manager
// connected to its default database. The test is skipped when Docker is
// unavailable. The container and the Manager are torn down with the test.
func StartNeo4j(t *testing.T) *graph.Manager {
	t.Helper()
	ctx := context.Background()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		t.Skip("Docker not available, skipping integration test")
	}
	if err := provider.Health(ctx); err != nil {
		t.Skip("Docker not running, skipping integration test")
	}

	req := testcontainers.ContainerRequest{
		Image:        "neo4j:5",
		ExposedPorts: []string{"7687/tcp"},
		Env:          map[string]string{"NEO4J_AUTH": "none"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("7687/tcp"),
			wait.ForLog("Started."),
		).WithDeadline(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start neo4j container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "7687")
	require.NoError(t, err)

	// Auth is disabled; the credentials are ignored by the server.
	mgr, err := graph.NewManager(graph.Config{
		URI:                          fmt.Sprintf("bolt://%s:%s", host, port.Port()),
		Username:                     "neo4j",
		Password:                     "ignored",
		MaxConnectionPoolSize:        10,
		ConnectionAcquisitionTimeout: 30 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close(context.Background()) })

	require.NoError(t, mgr.WaitForReady(ctx, 60*time.Second), "neo4j not ready")
	return mgr
}

// Reset removes every node and relationship.
func Reset(t *testing.T, r graph.Runner) {
	t.Helper()
	_, err := graph.Write(context.Background(), r, "reset", graph.Statement{Cypher: "MATCH (n) DETACH DELETE n"})
	require.NoError(t, err)
}

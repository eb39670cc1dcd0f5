package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xdev-exe/cortyx/internal/config"
	"github.com/xdev-exe/cortyx/internal/graph"
	"github.com/xdev-exe/cortyx/internal/graph/graphtest"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func testApp() *app {
	cfg := config.Config{}
	cfg.ApplyDefaults()
	return &app{env: "test", cfg: cfg, logger: zap.NewNop()}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(out.String(), "cortyx dev (commit "), out.String())
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "seed", "reindex", "version"})

	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)
	assert.Equal(t, "config/schema/erp.yaml", seedCmd.Flags().Lookup("file").DefValue)

	reindexCmd, _, err := cmd.Find([]string{"reindex"})
	require.NoError(t, err)
	assert.NotNil(t, reindexCmd.Flags().Lookup("doctype"))
	assert.Equal(t, "false", reindexCmd.Flags().Lookup("recreate").DefValue)
}

func TestSeedCommand_MissingFile(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"seed", "--file", "testdata/does-not-exist.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read catalog")
}

func TestWireServices_EnsuresConstraints(t *testing.T) {
	runner := graphtest.NewRunner(nil)
	a := testApp()

	require.NoError(t, a.wireServices(context.Background(), runner, pingFunc(func(context.Context) error { return nil })))

	calls := runner.Calls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "schema.constraints", c.Op)
		assert.True(t, c.Write)
		assert.Contains(t, c.Statement.Cypher, "CREATE CONSTRAINT")
	}
	assert.Contains(t, calls[1].Statement.Cypher, "NamingSeries")
	assert.NotNil(t, a.documents)
	assert.NotNil(t, a.health)
	assert.Nil(t, a.knowledge)
}

func TestWireServices_ConstraintFailureStopsStartup(t *testing.T) {
	runner := graphtest.NewRunner(func(graphtest.Call) ([]graph.Record, error) {
		return nil, errors.New("permission denied")
	})
	a := testApp()

	err := a.wireServices(context.Background(), runner, pingFunc(func(context.Context) error { return nil }))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure graph constraints")
	assert.Nil(t, a.documents)
}

package integration_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// TestStdioProtocolCompliance drives a built escrowd binary over stdio with the SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := "./bin/escrowd"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/escrowd"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("escrowd binary not found. Run 'go build -o bin/escrowd ./cmd/escrowd' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = append(os.Environ(),
		"ESCROW_TRANSPORT=stdio",
		"ESCROW_DB_PATH="+filepath.Join(t.TempDir(), "escrow.db"),
		"ESCROW_LOCAL_IDENTITY=GLOCAL",
		"ESCROW_LOG_LEVEL=error",
	)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "Failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "proofescrow", initResult.ServerInfo.Name)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err)
		require.Len(t, tools.Tools, 6)
	})

	t.Run("LocalIdentityIsCaller", func(t *testing.T) {
		// Far-future deadline: the binary runs on the system clock.
		res := callTool(t, session, "register_project", map[string]any{
			"goal": "10", "proof_hash": commitment, "deadline": 32503680000,
		})
		require.False(t, res.IsError, res.Text)
		require.Contains(t, res.Text, `"creator":"GLOCAL"`)

		res = callTool(t, session, "deposit", map[string]any{"project_id": 0, "amount": "3"})
		require.False(t, res.IsError, res.Text)
		require.Contains(t, res.Text, `"balance":"3"`)
	})

	t.Run("ReadLifecycleDoc", func(t *testing.T) {
		res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "escrow://docs/lifecycle"})
		require.NoError(t, err)
		require.NotEmpty(t, res.Contents)
	})
}

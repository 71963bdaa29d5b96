package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rpggio/proofescrow/internal/testserver"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

const commitment = "0101010101010101010101010101010101010101010101010101010101010101"

var tokens = map[string]string{
	"creator-token": "GCREATOR",
	"donor-token":   "GDONOR",
	"admin-token":   testserver.Admin,
	"oracle-token":  "GORACLE",
}

type toolResult struct {
	Text    string
	IsError bool
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) toolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return toolResult{Text: text.Text, IsError: res.IsError}
}

func connect(t *testing.T, ts *testserver.TestServer, token string) *sdkmcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	session, err := ts.Connect(ctx, t, token)
	require.NoError(t, err)
	return session
}

func TestIntegration_FundAndVerifyOverHTTP(t *testing.T) {
	ts := testserver.New(t, tokens)
	creator := connect(t, ts, "creator-token")
	donor := connect(t, ts, "donor-token")
	admin := connect(t, ts, "admin-token")
	oracle := connect(t, ts, "oracle-token")

	res := callTool(t, creator, "register_project", map[string]any{
		"goal": "1000", "proof_hash": commitment, "deadline": 2000,
	})
	require.False(t, res.IsError, res.Text)

	var registered struct {
		Project struct {
			ID      uint64 `json:"id"`
			Creator string `json:"creator"`
			Status  string `json:"status"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &registered))
	require.Equal(t, uint64(0), registered.Project.ID)
	require.Equal(t, "GCREATOR", registered.Project.Creator)
	require.Equal(t, "funding", registered.Project.Status)

	res = callTool(t, donor, "deposit", map[string]any{"project_id": 0, "amount": "700"})
	require.False(t, res.IsError, res.Text)

	// Donors cannot spend on someone else's behalf.
	res = callTool(t, creator, "deposit", map[string]any{"project_id": 0, "donor": "GDONOR", "amount": "1"})
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(res.Text, "Unauthorized: "), res.Text)

	res = callTool(t, oracle, "verify_and_release", map[string]any{"project_id": 0, "proof": commitment})
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(res.Text, "NotConfigured: "), res.Text)

	res = callTool(t, admin, "set_oracle", map[string]any{"oracle": "GORACLE"})
	require.False(t, res.IsError, res.Text)

	// There is no expiry path: a project past its deadline can still complete.
	ts.Clock.Advance(5000)

	res = callTool(t, oracle, "verify_and_release", map[string]any{"project_id": 0, "proof": strings.Repeat("ff", 32)})
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(res.Text, "HashMismatch: "), res.Text)

	res = callTool(t, oracle, "verify_and_release", map[string]any{"project_id": 0, "proof": commitment})
	require.False(t, res.IsError, res.Text)

	var verified struct {
		Status   string `json:"status"`
		Released string `json:"released"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &verified))
	require.Equal(t, "completed", verified.Status)
	require.Equal(t, "700", verified.Released)

	res = callTool(t, oracle, "verify_and_release", map[string]any{"project_id": 0, "proof": commitment})
	require.True(t, res.IsError)
	require.True(t, strings.HasPrefix(res.Text, "AlreadyCompleted: "), res.Text)

	res = callTool(t, creator, "list_project_events", map[string]any{"project_id": 0})
	require.False(t, res.IsError, res.Text)
	var events struct {
		Events []struct {
			Type  string `json:"type"`
			Actor string `json:"actor"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Text), &events))
	require.Len(t, events.Events, 3)
	require.Equal(t, "project_registered", events.Events[0].Type)
	require.Equal(t, "funds_deposited", events.Events[1].Type)
	require.Equal(t, "project_completed", events.Events[2].Type)
	require.Equal(t, "GORACLE", events.Events[2].Actor)
}

func TestIntegration_SequentialIDsAcrossCallers(t *testing.T) {
	ts := testserver.New(t, tokens)
	creator := connect(t, ts, "creator-token")
	donor := connect(t, ts, "donor-token")

	for i, session := range []*sdkmcp.ClientSession{creator, donor, creator} {
		res := callTool(t, session, "register_project", map[string]any{
			"goal": "5", "proof_hash": commitment, "deadline": 2000,
		})
		require.False(t, res.IsError, res.Text)
		require.Contains(t, res.Text, fmt.Sprintf(`"id":%d,`, i))
	}
}

func TestIntegration_RejectsUnknownToken(t *testing.T) {
	ts := testserver.New(t, tokens)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := ts.Connect(ctx, t, "stolen-token")
	require.Error(t, err)

	_, err = ts.Connect(ctx, t, "")
	require.Error(t, err)
}

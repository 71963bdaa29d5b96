package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/proofescrow/internal/cli"
	"github.com/rpggio/proofescrow/internal/domain/project"
	"github.com/rpggio/proofescrow/internal/ledger"
	"github.com/rpggio/proofescrow/internal/mcp"
	"github.com/rpggio/proofescrow/internal/sqlite"
	"github.com/rpggio/proofescrow/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// Admin is the registry admin of every test server.
const Admin = "GADMIN"

// TestServer is an authenticated MCP server over HTTP backed by an in-memory ledger.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Clock  *ledger.ManualClock
}

// New starts a server that accepts the given bearer tokens, each mapped to an identity.
// The ledger clock starts at 1000.
func New(t *testing.T, tokens map[string]string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	clock := ledger.NewManualClock(1000)
	host := ledger.NewHost(db, clock, ledger.Options{Admin: project.Address(Admin)})

	hashed := make(map[string]string, len(tokens))
	for token, identity := range tokens {
		hashed[transport.HashToken(token)] = identity
	}
	resolver := transport.NewStaticResolver(hashed)

	server := mcp.NewServer(mcp.Config{
		Ledger:        host,
		Resolver:      resolver,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	httpServer := httptest.NewServer(cli.NewHTTPHandler(server, resolver, true))

	t.Cleanup(func() {
		httpServer.Close()
		_ = db.Close()
	})

	return &TestServer{Server: httpServer, DB: db, Clock: clock}
}

// Connect opens an MCP client session that authenticates with token.
func (ts *TestServer) Connect(ctx context.Context, t *testing.T, token string) (*sdkmcp.ClientSession, error) {
	t.Helper()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: &bearerTransport{token: token}},
	}, nil)
	if err != nil {
		return nil, err
	}
	t.Cleanup(func() { _ = session.Close() })
	return session, nil
}

type bearerTransport struct {
	token string
}

func (b *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}
	return http.DefaultTransport.RoundTrip(req)
}

package mcp

import (
	"context"
	"log/slog"

	"github.com/rpggio/proofescrow/internal/domain/event"
	"github.com/rpggio/proofescrow/internal/domain/project"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Ledger runs registry calls atomically on behalf of a caller.
type Ledger interface {
	Invoke(ctx context.Context, op string, caller project.Address, fn func(ctx context.Context, r *project.Registry) error) error
	Events(ctx context.Context, projectID uint64, opts event.ListOptions) ([]event.Event, error)
}

// Config contains server configuration.
type Config struct {
	Ledger        Ledger
	Resolver      IdentityResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	// LocalIdentity is the caller used whenever bearer auth is not in effect.
	LocalIdentity string
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "proofescrow",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio is local only: the configured identity is the caller.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(localIdentityMiddleware(cfg.LocalIdentity))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg.Ledger)

	return server
}

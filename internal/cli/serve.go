package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpggio/proofescrow/internal/config"
	"github.com/rpggio/proofescrow/internal/mcp"
	"github.com/rpggio/proofescrow/internal/transport"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// Version is reported to MCP clients.
var Version = "0.1.0"

// NewServeCommand creates the serve subcommand.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over MCP (stdio or http)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Stdio mode keeps stdout clean for JSON-RPC.
			logWriter := io.Writer(cmd.ErrOrStderr())

			a, err := openApp(opts, logWriter)
			if err != nil {
				return err
			}
			defer a.Close()

			if mode != "" {
				a.cfg.Transport.Mode = mode
				if err := a.cfg.Validate(); err != nil {
					return WrapExitError(ExitCommandError, "config error", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := newMCPServer(a)
			if a.cfg.Transport.Mode == config.TransportStdio {
				return runStdio(ctx, a.logger, server)
			}
			return runHTTP(ctx, a, server)
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "transport mode (stdio|http), overrides config")
	return cmd
}

func newMCPServer(a *app) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Ledger:        a.host,
		Resolver:      transport.NewStaticResolver(a.cfg.Auth.Tokens),
		AuthEnabled:   a.cfg.Auth.Enabled,
		TransportMode: a.cfg.Transport.Mode,
		LocalIdentity: a.cfg.Auth.LocalIdentity,
		Version:       Version,
		Logger:        a.logger,
	})
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or the context is canceled
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "stdio server error", err)
	}
	return nil
}

// NewHTTPHandler builds the HTTP surface of the server: the MCP endpoint and a health check.
func NewHTTPHandler(server *sdkmcp.Server, resolver transport.IdentityResolver, authEnabled bool) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	var authMiddleware func(http.Handler) http.Handler
	if authEnabled {
		authMiddleware = transport.AuthMiddleware(resolver)
	}
	return transport.NewServer(mcpHandler, authMiddleware)
}

func runHTTP(ctx context.Context, a *app, server *sdkmcp.Server) error {
	addr := net.JoinHostPort(a.cfg.Server.Host, fmt.Sprint(a.cfg.Server.Port))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           NewHTTPHandler(server, transport.NewStaticResolver(a.cfg.Auth.Tokens), a.cfg.Auth.Enabled),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "auth", a.cfg.Auth.Enabled)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return WrapExitError(ExitFailure, "server error", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", "error", err)
	}
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreos/go-systemd/v22/daemon"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/mcp-hubspot/internal/config"
	"github.com/giantswarm/mcp-hubspot/pkg/logging"
)

// sdNotify is replaced in tests.
var sdNotify = daemon.SdNotify

// runServers runs the HTTP surface and, for the stdio transport, an MCP
// session on in/out. SIGINT and SIGTERM trigger a graceful shutdown, as does
// the stdio client closing its input.
func runServers(ctx context.Context, services *Services, in io.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return services.HTTPServer.Serve(gctx, func(addr string) {
			notifySystemd(daemon.SdNotifyReady)
			if !services.Tokens.Authorized() {
				logging.Info("Server", "Not authorized yet: open %s to connect HubSpot", installURL(services.Config))
			}
		})
	})

	if services.Config.Transport == config.TransportStdio {
		g.Go(func() error {
			// The stdio client going away ends the whole process.
			defer cancel()

			logging.Info("Server", "Serving MCP on stdin/stdout")
			stdio := mcpserver.NewStdioServer(services.MCPServer)
			stdio.SetErrorLogger(slog.NewLogLogger(logging.Logger().Handler(), slog.LevelError))
			if err := stdio.Listen(gctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("stdio transport failed: %w", err)
			}
			logging.Info("Server", "Stdio transport closed")
			return nil
		})
	}

	err := g.Wait()
	notifySystemd(daemon.SdNotifyStopping)
	return err
}

// notifySystemd sends a state notification when running under systemd.
func notifySystemd(state string) {
	sent, err := sdNotify(false, state)
	if err != nil {
		logging.Warn("Server", "Failed to notify systemd: %v", err)
		return
	}
	if sent {
		logging.Debug("Server", "Notified systemd: %s", state)
	}
}

// installURL returns the /install page next to the configured callback.
func installURL(cfg *config.Config) string {
	if base := publicBaseURL(cfg.RedirectURI); base != "" {
		return base + "/install"
	}
	return "/install"
}

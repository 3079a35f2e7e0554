package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/gomoku-server/internal/api"
	"github.com/mcoot/gomoku-server/internal/config"
	"github.com/mcoot/gomoku-server/internal/factory"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gomoku server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg, err := loadServerConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return Serve(ctx, serverCfg, cmd.OutOrStdout(), nil)
		},
	}

	flags := cmd.Flags()
	flags.Int("telnet-port", 8023, "Port for the line protocol listener")
	flags.Int("http-port", 8080, "Port for the admin API and spectator pages")
	flags.Bool("http-enabled", true, "Serve the admin API and spectator pages")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	addStorageFlags(flags)

	return cmd
}

// Serve runs the server until ctx is cancelled, then shuts down and saves.
// ready, if non-nil, is told the bound addresses once the listeners are up;
// httpAddr is empty when HTTP is disabled.
func Serve(ctx context.Context, serverCfg config.Config, logOut io.Writer, ready func(telnetAddr, httpAddr string)) error {
	logger := serverCfg.Log.NewLogger(logOut)
	slog.SetDefault(logger)

	app, err := factory.New(serverCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	if err := app.Load(ctx); err != nil {
		return err
	}

	if err := app.Server.Start(ctx); err != nil {
		return err
	}

	var httpServer *api.Server
	if serverCfg.HTTP.Enabled {
		httpServer = app.HTTPServer(logger)
		if err := httpServer.Start(); err != nil {
			_ = app.Server.Shutdown(context.WithoutCancel(ctx))
			return err
		}
	}

	httpAddr := ""
	if httpServer != nil {
		httpAddr = httpServer.Addr()
	}
	logger.Info("server started",
		slog.String("telnet_addr", app.Server.Addr()),
		slog.String("http_addr", httpAddr),
		slog.String("storage", serverCfg.Storage.Type))
	if ready != nil {
		ready(app.Server.Addr(), httpAddr)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx := context.WithoutCancel(ctx)
	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
		}
	}
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	if err := app.Save(shutdownCtx); err != nil {
		logger.Error("final save failed", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return nil
}

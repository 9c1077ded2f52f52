package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/service/indexer"
	"github.com/janmasethu/sakhi/internal/service/router"
	"github.com/janmasethu/sakhi/internal/transport/api"
	"github.com/janmasethu/sakhi/internal/transport/telegram"
	"github.com/janmasethu/sakhi/pkg/log"
	"github.com/janmasethu/sakhi/pkg/srv"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Sakhi services",
	Long:  `Starts the HTTP API, the optional Telegram bot, the knowledge indexer and the routing policy watcher.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)
		logger.Info().Str("version", core.SakhiVersion).Msg("starting sakhi")

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}

		services, err := NewServices(ctx, app)
		if err != nil {
			app.Close()
			return err
		}

		srv.StartServices(ctx, services)
		srv.ShutdownServices(ctx, services)
		logger.Info().Msg("sakhi has been shut down gracefully")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

// NewServices returns services in start order; shutdown runs in reverse, so the
// database cleanup comes first and closes last.
func NewServices(ctx context.Context, app *App) ([]srv.Service, error) {
	services := []srv.Service{srv.NewCleanup("database", app.Close)}

	if app.RouterCfg.PolicyPath != "" {
		w, err := router.NewPolicyWatcher(app.Router, app.RouterCfg.PolicyPath)
		if err != nil {
			return nil, err
		}
		services = append(services, w)
	}

	if app.AppCfg.EnableIndexer {
		services = append(services, indexer.NewWorker(app.Knowledge, app.Embedder, app.RAGCfg))
	}

	if app.AppCfg.EnableHTTP {
		services = append(services, api.NewServer(config.NewHTTPConfig(ctx), app.Turns, app.Profiles))
	}

	if app.AppCfg.EnableTelegram {
		bot, err := telegram.NewBot(ctx, config.NewTelegramConfig(ctx), app.Turns, app.Commands, app.Profiles)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	return services, nil
}

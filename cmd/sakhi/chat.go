package main

import (
	"os"
	"os/signal"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/internal/transport/cli"
	"github.com/spf13/cobra"
)

var chatLanguage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with Sakhi in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		app, err := NewApp(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		repl, err := cli.NewReadLine(app.Turns, app.Commands, app.AppCfg, chatLanguage)
		if err != nil {
			return err
		}
		defer repl.Shutdown(ctx)

		// The local user skips onboarding.
		if _, err := app.Profiles.Upsert(ctx, core.Profile{
			UserID:   repl.UserID(),
			Name:     "Friend",
			Gender:   "unspecified",
			Location: "local",
		}); err != nil {
			return err
		}

		return repl.Start(ctx)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatLanguage, "lang", "l", "en", "declared language for the session")
	rootCmd.AddCommand(chatCmd)
}

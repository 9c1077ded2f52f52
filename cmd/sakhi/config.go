package main

import (
	"fmt"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/pkg/env"
	"github.com/spf13/cobra"
)

var showSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as .env lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetEnvPath()); err != nil {
			return err
		}

		out, err := env.MarshalEnv(!showSecrets,
			config.NewAppConfig(ctx),
			config.NewSLMConfig(ctx),
			config.NewLLMConfig(ctx),
			config.NewRAGConfig(ctx),
			config.NewRouterConfig(ctx),
			config.NewHTTPConfig(ctx),
		)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "# "+config.GetEnvPath())
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print secrets unmasked")
	rootCmd.AddCommand(configCmd)
}

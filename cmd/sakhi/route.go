package main

import (
	"fmt"
	"strings"

	"github.com/janmasethu/sakhi/internal/config"
	"github.com/janmasethu/sakhi/internal/service/ui"
	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route <message>",
	Short: "Show which tier a message is routed to",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetEnvPath()); err != nil {
			return err
		}
		r, err := newRouter(ctx, config.NewRouterConfig(ctx))
		if err != nil {
			return err
		}

		d := r.Decide(strings.Join(args, " "))
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("ROUTE"))
		fmt.Fprintf(out, "  %s  %s\n", ui.RouteBadge(d.Route), ui.DescStyle.Render("mode "+d.Route.Mode()))
		fmt.Fprintf(out, "  intent %s\n", ui.UsageStyle.Render(d.Intent))
		fmt.Fprintf(out, "  rule   %s\n", ui.FlagStyle.Render(d.Rule))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(routeCmd)
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/pipenet/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the operator dashboard",
	Long: `Starts the refresh loop and the dashboard HTTP server. Diagrams are pushed to
browsers over server-sent events; route previews and valve changes go through the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := commonOptions(cmd)
		opts.Listen, _ = cmd.Flags().GetString("listen")
		quiet, _ := cmd.Flags().GetBool("quiet")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.RunServe(ctx, opts, quiet)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides config)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner")
}

package main

import (
	"os"

	"github.com/aretw0/pipenet/internal/cli"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print a report of segments, valves and their diagram styles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunStatus(cmd.Context(), commonOptions(cmd), os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

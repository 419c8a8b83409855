package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pipenet/internal/cli"
	"github.com/aretw0/pipenet/internal/dashboard"
	"github.com/aretw0/pipenet/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the piping network as a Mermaid diagram",
	Long: `Fetches the topology once and prints a Mermaid flowchart (graph LR).
With --from and --to the backend's suggested route is highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")
		if view != dashboard.ViewFlowchart && view != dashboard.ViewCompact {
			return fmt.Errorf("unknown view %q: use %s or %s", view, dashboard.ViewFlowchart, dashboard.ViewCompact)
		}

		gopts := cli.GraphOptions{View: view}
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		if from != "" || to != "" {
			via, _ := cmd.Flags().GetStringSlice("via")
			gopts.Route = &domain.RouteRequest{Start: from, Goal: to, Via: via}
		}

		return cli.RunGraph(cmd.Context(), commonOptions(cmd), gopts, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("view", dashboard.ViewFlowchart, "Diagram view: flowchart or compact")
	graphCmd.Flags().String("from", "", "Highlight a suggested route starting here")
	graphCmd.Flags().String("to", "", "Highlight a suggested route ending here")
	graphCmd.Flags().StringSlice("via", nil, "Intermediate equipment for the suggested route")
}

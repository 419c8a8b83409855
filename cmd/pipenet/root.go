package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pipenet/internal/cli"
	"github.com/aretw0/pipenet/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipenet",
	Short: "Pipenet renders the plant piping network and previews routes",
	Long: `Pipenet polls the plant backend for pipe segments and valve states, draws them as
Mermaid diagrams and lets operators preview and start routes from a web dashboard.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonOptions reads the persistent flags.
func commonOptions(cmd *cobra.Command) cli.Options {
	path, _ := cmd.Flags().GetString("config")
	backendURL, _ := cmd.Flags().GetString("backend")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	return cli.Options{
		ConfigPath: path,
		BackendURL: backendURL,
		LogLevel:   level,
		Debug:      debug,
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultPath, "Path to the YAML or JSON config file")
	rootCmd.PersistentFlags().String("backend", "", "Plant backend base URL (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

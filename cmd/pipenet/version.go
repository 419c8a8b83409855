package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pipenet"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pipenet",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pipenet version %s\n", strings.TrimSpace(pipenet.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

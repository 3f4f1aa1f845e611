package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagConfigDir string

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Budget ledger service",
		Long:  "Budget ledger for clients, projects, estimations, payments, milestones and additional budget requests.",
	}
	rootCmd.PersistentFlags().StringVarP(&flagConfigDir, "config", "c", "", "Config directory (default $CONFIG_DIR or ./config)")

	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		outboxCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

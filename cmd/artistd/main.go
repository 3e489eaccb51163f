// Command artistd serves the artist single page application and offers tools
// to inspect its route table.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "artistd",
		Short:         "Artist manager single page application server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		serveCmd(opts),
		routesCmd(opts),
		navigateCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "artistd %s (%s)\n", version, commit)
		},
	}
}

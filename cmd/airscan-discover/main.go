// Airscan-discover is a discovery and inspection utility for eSCL network
// scanners (Apple AirScan / Mopria eSCL).
//
// It browses the local network for scanners advertising the "_uscan._tcp"
// DNS-SD service, negotiates their capabilities over HTTP, and displays the
// resulting device table. Statically configured devices from the config
// file are merged into the same table.
//
// Usage:
//
//	airscan-discover [command] [flags]
//
// Running without arguments lists the devices found on the network.
// See 'airscan-discover --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yetamrra/sane-airscan-wsd/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "airscan-discover",
	Short: "eSCL Network Scanner Discovery Utility",
	Long: `A standalone utility for discovering eSCL network scanners.

Browses the local network for AirScan/eSCL scanners via mDNS, fetches
their capability documents, and displays the negotiated device table.

If no command is specified, devices are listed once and the tool exits.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: list devices when no subcommand provided
		return runList(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("airscan-discover %s (commit: %s)\n", version.Version, version.Commit)
	},
}

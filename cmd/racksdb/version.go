package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/racks"
)

// Set via ldflags at build time
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "racksdb %s (commit: %s, built: %s, schema: %s)\n",
			version, commit, buildDate, embeddedSchemaVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// embeddedSchemaVersion returns the version of the schema shipped with the
// binary, "unknown" when it cannot be parsed.
func embeddedSchemaVersion() string {
	s, err := racks.LoadSchema("", "", zerolog.Nop())
	if err != nil {
		return "unknown"
	}
	return s.Version
}

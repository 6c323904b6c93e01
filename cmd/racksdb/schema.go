package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/core/dumper"
	"github.com/artpar/racksdb/racks"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Dump the schema with its extensions",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	s, err := racks.LoadSchema(e.cfg.Schema.Path, e.cfg.Schema.Extensions, e.logger)
	if err != nil {
		return err
	}
	return dumper.DumpSchema(cmd.OutOrStdout(), s)
}

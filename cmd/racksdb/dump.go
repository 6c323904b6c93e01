package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/core/dumper"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump the whole database",
	Long: `Dump the whole database in a form that loads again with the same
schema: back references and computed properties are dropped, references
are rendered as the value they refer to.

Examples:
  racksdb dump
  racksdb dump --format json --fold`,
	Args: cobra.NoArgs,
	RunE: runDump,
}

var (
	dumpFormat string
	dumpFold   bool
)

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpFormat, "format", "", "output format (yaml, json)")
	dumpCmd.Flags().BoolVar(&dumpFold, "fold", false, "fold expandable objects")
}

func runDump(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	d, err := e.load()
	if err != nil {
		return err
	}

	format := dumpFormat
	if format == "" {
		format = e.cfg.Dump.Format
	}
	return dumper.Dump(cmd.OutOrStdout(), format, d.Database, dumper.Options{
		Fold:       dumpFold || e.cfg.Dump.Fold,
		Reloadable: true,
	})
}

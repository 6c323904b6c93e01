package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the schema and the database",
	Long: `Load the schema, its extensions and the database, and print a
summary of the loaded inventory.

Examples:
  racksdb validate
  racksdb validate --db /var/lib/racksdb --ext /etc/racksdb/extensions.yml`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", e.cfg.Database.Path)

	d, err := e.load()
	if err != nil {
		fmt.Fprintf(out, "  %s Database loaded\n", crossMark)
		return fmt.Errorf("database error: %w", err)
	}
	fmt.Fprintf(out, "  %s Database loaded (load %s)\n", checkMark, d.LoadID())
	fmt.Fprintf(out, "  %s Schema version: %s\n", checkMark, d.Schema().Version)
	fmt.Fprintf(out, "  %s Datacenters: %d\n", checkMark, d.Datacenters().Len())
	fmt.Fprintf(out, "  %s Racks: %d\n", checkMark, d.Racks().Len())
	fmt.Fprintf(out, "  %s Infrastructures: %d\n", checkMark, d.Infrastructures().Len())
	fmt.Fprintf(out, "  %s Nodes: %d\n", checkMark, d.Nodes().Len())

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Database is valid.")
	return nil
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)

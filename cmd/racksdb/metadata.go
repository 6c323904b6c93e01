package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/core/metadata"
	"github.com/artpar/racksdb/racks"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Print the API description of the views",
	Long: `Print the OpenAPI description of the views and the component
schemas of every class, as JSON.

Examples:
  racksdb metadata
  racksdb metadata --describe
  racksdb metadata --views`,
	Args: cobra.NoArgs,
	RunE: runMetadata,
}

var (
	metadataDescribe bool
	metadataViews    bool
)

func init() {
	rootCmd.AddCommand(metadataCmd)

	metadataCmd.Flags().BoolVar(&metadataDescribe, "describe", false, "print the schema introspection records instead")
	metadataCmd.Flags().BoolVar(&metadataViews, "views", false, "print the view descriptors instead")
}

func runMetadata(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	s, err := racks.LoadSchema(e.cfg.Schema.Path, e.cfg.Schema.Extensions, e.logger)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case metadataDescribe:
		out, err = json.MarshalIndent(metadata.Describe(s), "", "  ")
	case metadataViews:
		out, err = json.MarshalIndent(metadata.Views(racks.Views().Metadata()), "", "  ")
	default:
		gen := metadata.NewGenerator(s)
		gen.SetInfo(metadata.Info{
			Title:   "RacksDB REST API",
			Version: version,
		})
		spec, genErr := gen.Generate(racks.Views().Metadata(), racks.Parameters)
		if genErr != nil {
			return genErr
		}
		out, err = spec.ToJSON()
	}
	if err != nil {
		return fmt.Errorf("render metadata: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

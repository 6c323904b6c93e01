package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/core/db"
	"github.com/artpar/racksdb/core/dumper"
	"github.com/artpar/racksdb/racks"
)

// viewFlags are the flags of a view command.
type viewFlags struct {
	name           string
	infrastructure string
	tags           []string
	list           bool
	fold           bool
	withTypes      bool
	format         string
}

func init() {
	for _, v := range racks.Views() {
		rootCmd.AddCommand(newViewCmd(v))
	}
}

func newViewCmd(v racks.View) *cobra.Command {
	f := &viewFlags{}
	cmd := &cobra.Command{
		Use:   v.Content,
		Short: v.Description,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, v, f)
		},
	}

	for _, filter := range v.Filters {
		switch filter.Name {
		case "name":
			cmd.Flags().StringVar(&f.name, "name", "", filter.Description)
		case "infrastructure":
			cmd.Flags().StringVar(&f.infrastructure, "infrastructure", "", filter.Description)
		case "tags":
			cmd.Flags().StringSliceVar(&f.tags, "tags", nil, filter.Description)
		}
	}
	for _, p := range racks.Parameters {
		switch p.Name {
		case "list":
			cmd.Flags().BoolVarP(&f.list, "list", "l", false, p.Description)
		case "fold":
			cmd.Flags().BoolVarP(&f.fold, "fold", "f", false, p.Description)
		case "with_objects_types":
			cmd.Flags().BoolVar(&f.withTypes, "with-objects-types", false, p.Description)
		case "format":
			cmd.Flags().StringVar(&f.format, "format", "", fmt.Sprintf("%s %v", p.Description, p.Choices))
		}
	}
	return cmd
}

func runView(cmd *cobra.Command, v racks.View, f *viewFlags) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	d, err := e.load()
	if err != nil {
		return err
	}

	criteria := db.Criteria{}
	flags := cmd.Flags()
	if flags.Changed("name") {
		criteria["name"] = f.name
	}
	if flags.Changed("infrastructure") {
		criteria["infrastructure"] = f.infrastructure
	}
	if flags.Changed("tags") {
		criteria["tags"] = f.tags
	}

	res, err := d.View(v.Content, criteria)
	if err != nil {
		return err
	}
	e.logger.Debug().Str("view", v.Content).Int("objects", len(res.Objects())).Msg("view selected")

	if f.list {
		return dumper.Dump(cmd.OutOrStdout(), "console", res.Names(), dumper.Options{Fold: f.fold})
	}

	format, err := viewFormat(f.format, e.cfg.Dump.Format)
	if err != nil {
		return err
	}
	return dumper.Dump(cmd.OutOrStdout(), format, res.Data, dumper.Options{
		ObjectsMap: v.ObjectsMap,
		Fold:       f.fold || e.cfg.Dump.Fold,
		ShowTypes:  f.withTypes,
	})
}

// viewFormat returns the format of a view dump: the flag when set, else the
// configured format when views support it, else yaml.
func viewFormat(flag, configured string) (string, error) {
	var choices []string
	for _, p := range racks.Parameters {
		if p.Name == "format" {
			choices = p.Choices
		}
	}
	supported := func(f string) bool {
		for _, c := range choices {
			if c == f {
				return true
			}
		}
		return false
	}

	if flag != "" {
		if !supported(flag) {
			return "", fmt.Errorf("unsupported view format %s, supported formats: %v", flag, choices)
		}
		return flag, nil
	}
	if supported(configured) {
		return configured, nil
	}
	return "yaml", nil
}

package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/adapters/idgen"
	"github.com/artpar/racksdb/config"
	"github.com/artpar/racksdb/racks"
)

var (
	// Global flags
	cfgFile    string
	schemaPath string
	extPath    string
	dbPath     string
	debug      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "racksdb",
	Short: "Query the inventory of datacenters and infrastructures",
	Long: `RacksDB models datacenters, their rooms, rows and racks, and the
infrastructures whose nodes and equipments are placed in those racks.

Examples:
  racksdb nodes --infrastructure mercury --list --fold
  racksdb racks --name R1-A01 --format json
  racksdb dump --format yaml
  racksdb validate --db /var/lib/racksdb`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger := newLogger(config.LoggingConfig{Level: "error", Format: "console"}, false)
		logger.Error().Err(err).Msg("racksdb failed")
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "racksdb.yaml", "config file path")
	rootCmd.PersistentFlags().StringVarP(&schemaPath, "schema", "s", "", "schema file path")
	rootCmd.PersistentFlags().StringVarP(&extPath, "ext", "e", "", "schema extensions file path")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "b", "", "database file or directory path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// env holds the configuration and logger resolved for a command.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// setup loads the configuration, applies the global flags over it and
// configures the logger.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("schema") {
		cfg.Schema.Path = schemaPath
	}
	if flags.Changed("ext") {
		cfg.Schema.Extensions = extPath
	}
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	return &env{cfg: cfg, logger: newLogger(cfg.Logging, debug)}, nil
}

// options returns the inventory options of the configuration.
func (e *env) options() racks.Options {
	return racks.Options{
		Schema:     e.cfg.Schema.Path,
		Extensions: e.cfg.Schema.Extensions,
		Database:   e.cfg.Database.Path,
		Logger:     e.logger,
		IDs:        idgen.UUID{},
	}
}

// load reads the inventory of the configuration.
func (e *env) load() (*racks.DB, error) {
	e.logger.Debug().
		Str("schema", e.cfg.Schema.Path).
		Str("extensions", e.cfg.Schema.Extensions).
		Str("db", e.cfg.Database.Path).
		Msg("loading database")
	return racks.Load(e.options())
}

func newLogger(cfg config.LoggingConfig, debug bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

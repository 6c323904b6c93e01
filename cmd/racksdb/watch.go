package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/artpar/racksdb/adapters/metrics"
	"github.com/artpar/racksdb/racks"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load the database and reload it on changes",
	Long: `Load the database, then watch the database, the schema and the
extensions files and reload the inventory once they change. SIGHUP
reloads too, SIGINT and SIGTERM stop watching.

Examples:
  racksdb watch --db /var/lib/racksdb`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	opts := e.options()
	var holderOpts []racks.HolderOption
	if e.cfg.Reload.Debounce > 0 {
		holderOpts = append(holderOpts, racks.WithDebounce(e.cfg.Reload.Debounce))
	}
	if e.cfg.Metrics.Enabled {
		collector := metrics.NewWithRegistry(prometheus.DefaultRegisterer, e.cfg.Metrics.Namespace)
		opts.Observer = collector
		holderOpts = append(holderOpts, racks.WithRecorder(collector))
	}

	h, err := racks.NewHolder(opts, e.logger, holderOpts...)
	if err != nil {
		return err
	}
	defer h.Stop()

	h.OnChange(func(d *racks.DB) {
		e.logger.Info().
			Int("datacenters", d.Datacenters().Len()).
			Int("infrastructures", d.Infrastructures().Len()).
			Int("nodes", d.Nodes().Len()).
			Msg("inventory updated")
	})

	if err := h.Watch(); err != nil {
		return err
	}
	h.WatchSignals()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	<-stop

	e.logger.Info().Msg("stopped watching database")
	return nil
}

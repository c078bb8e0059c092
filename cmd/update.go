package main

import (
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/metrics"
)

var updateCmd = &cobra.Command{
	Use:   "update <terms> <stores.go>",
	Short: "Run collect, geocode and generate in sequence",
	Long: `Refresh the generated store directory end to end.

Addresses are written to --addresses and the resolved directory to
--cache, which also seeds the geocoder so known stores are never
re-queried.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		addressesPath, _ := cmd.Flags().GetString("addresses")
		cachePath, _ := cmd.Flags().GetString("cache")

		opts, err := parseGeocodeOpts(cmd)
		if err != nil {
			return err
		}
		opts.addresses = addressesPath
		opts.output = cachePath

		if err := cfg.Validate(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "update"))
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)

		log.Info("stage 1/3: collect")
		addrs, err := runCollect(ctx, args[0], addressesPath, m)
		if err != nil {
			return err
		}

		log.Info("stage 2/3: geocode")
		dir, err := runGeocode(ctx, addrs, opts, m)
		if err != nil {
			return err
		}

		log.Info("stage 3/3: generate")
		if err := runGenerate(dir, args[1]); err != nil {
			return err
		}

		return metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
	},
}

func init() {
	updateCmd.Flags().String("addresses", "addresses.json", "where to write the collected address list")
	updateCmd.Flags().String("cache", "stores.json", "resolved directory JSON, read as seed and rewritten")
	updateCmd.Flags().String("seed-artifact", "", "also seed from a previously generated Go file")
	updateCmd.Flags().String("journal", "", "SQLite journal for resuming interrupted runs (overrides geocode.journal)")
	updateCmd.Flags().Duration("delay", 0, "minimum idle time between geocoding requests (overrides geocode.delay_ms)")
	rootCmd.AddCommand(updateCmd)
}

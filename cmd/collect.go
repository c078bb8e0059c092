package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/storegeo/internal/collect"
	"github.com/sells-group/storegeo/internal/directory"
	"github.com/sells-group/storegeo/internal/fetcher"
	"github.com/sells-group/storegeo/internal/metrics"
)

var collectCmd = &cobra.Command{
	Use:   "collect <terms> <addresses.json>",
	Short: "Scrape store addresses for a list of search terms",
	Long: `Submit each search term to the store locator and write the distinct
addresses found as a sorted JSON array.

The terms file is a JSON or YAML list of strings, or a YAML mapping with a
"terms" list.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if failFast, _ := cmd.Flags().GetBool("fail-fast"); failFast {
			cfg.Collect.FailFast = true
		}

		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		if _, err := runCollect(ctx, args[0], args[1], m); err != nil {
			return err
		}
		return metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
	},
}

func init() {
	collectCmd.Flags().Bool("fail-fast", false, "abort on the first failed search term")
	rootCmd.AddCommand(collectCmd)
}

// runCollect scrapes addresses for the terms in termsPath and writes them
// to outPath. The output is left untouched on error.
func runCollect(ctx context.Context, termsPath, outPath string, m *metrics.Recorder) ([]string, error) {
	log := zap.L().With(zap.String("command", "collect"))

	terms, err := collect.LoadTerms(termsPath)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, eris.Errorf("collect: %s contains no search terms", termsPath)
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:  cfg.Collect.UserAgent,
		Timeout:    time.Duration(cfg.Collect.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Collect.MaxRetries,
		Rate:       rate.Limit(cfg.Collect.RateLimit),
	})
	c := collect.New(f, collect.Options{
		SearchURL: cfg.Collect.SearchURL,
		FormField: cfg.Collect.FormField,
		Referer:   cfg.Collect.Referer,
		FailFast:  cfg.Collect.FailFast,
		Metrics:   m,
	})

	log.Info("collecting addresses",
		zap.String("url", cfg.Collect.SearchURL),
		zap.Int("terms", len(terms)),
	)

	res, err := c.Collect(ctx, terms)
	if err != nil {
		return nil, err
	}
	if err := directory.WriteAddresses(outPath, res.Addresses); err != nil {
		return nil, err
	}

	log.Info("collect complete",
		zap.Int("addresses", len(res.Addresses)),
		zap.Int("failed_terms", len(res.Failed)),
		zap.String("output", outPath),
	)
	return res.Addresses, nil
}

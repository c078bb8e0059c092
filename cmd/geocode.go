package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/directory"
	"github.com/sells-group/storegeo/internal/emit"
	"github.com/sells-group/storegeo/internal/journal"
	"github.com/sells-group/storegeo/internal/metrics"
	"github.com/sells-group/storegeo/internal/resilience"
	"github.com/sells-group/storegeo/internal/resolve"
	"github.com/sells-group/storegeo/pkg/geocode"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode <addresses.json> <stores.json>",
	Short: "Resolve addresses to coordinates, reusing cached results",
	Long: `Resolve each address in the input list to coordinates.

Addresses already present in the seed cache are copied without a network
call. The seed defaults to the existing output file; use --cache to read
it from elsewhere and --seed-artifact to also recover entries from a
previously generated Go file. Requests to the geocoding service are spaced
by at least --delay.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		opts, err := parseGeocodeOpts(cmd)
		if err != nil {
			return err
		}
		opts.addresses = args[0]
		opts.output = args[1]

		if err := cfg.Validate(); err != nil {
			return err
		}

		wanted, err := directory.LoadAddresses(opts.addresses)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		if _, err := runGeocode(ctx, wanted, opts, metrics.New(reg)); err != nil {
			return err
		}
		return metrics.WriteTextfile(cfg.Metrics.Textfile, reg)
	},
}

func init() {
	geocodeCmd.Flags().String("cache", "", "seed cache JSON (default: the output file)")
	geocodeCmd.Flags().String("seed-artifact", "", "also seed from a previously generated Go file")
	geocodeCmd.Flags().String("journal", "", "SQLite journal for resuming interrupted runs (overrides geocode.journal)")
	geocodeCmd.Flags().Duration("delay", 0, "minimum idle time between geocoding requests (overrides geocode.delay_ms)")
	rootCmd.AddCommand(geocodeCmd)
}

type geocodeOpts struct {
	addresses    string
	output       string
	cache        string
	seedArtifact string
}

// parseGeocodeOpts reads the geocode flags, applying config overrides.
func parseGeocodeOpts(cmd *cobra.Command) (geocodeOpts, error) {
	cache, _ := cmd.Flags().GetString("cache")
	seedArtifact, _ := cmd.Flags().GetString("seed-artifact")
	journalPath, _ := cmd.Flags().GetString("journal")

	if journalPath != "" {
		cfg.Geocode.Journal = journalPath
	}
	if cmd.Flags().Changed("delay") {
		d, _ := cmd.Flags().GetDuration("delay")
		if d < 0 {
			return geocodeOpts{}, eris.Errorf("geocode: --delay must be >= 0, got %s", d)
		}
		cfg.Geocode.DelayMS = int(d / time.Millisecond)
	}
	return geocodeOpts{cache: cache, seedArtifact: seedArtifact}, nil
}

// runGeocode resolves wanted and writes the result to opts.output. The
// output file is only replaced after a complete run.
func runGeocode(ctx context.Context, wanted []string, opts geocodeOpts, m *metrics.Recorder) (directory.Directory, error) {
	log := zap.L().With(zap.String("command", "geocode"))

	normalized := make([]string, 0, len(wanted))
	for _, a := range wanted {
		if a = directory.NormalizeAddress(a); a != "" {
			normalized = append(normalized, a)
		}
	}

	seedPath := opts.cache
	if seedPath == "" {
		seedPath = opts.output
	}
	seed, err := directory.LoadSeed(seedPath)
	if err != nil {
		return nil, err
	}
	if opts.seedArtifact != "" {
		if err := mergeArtifactSeed(seed, opts.seedArtifact); err != nil {
			return nil, err
		}
	}

	var j *journal.Journal
	if cfg.Geocode.Journal != "" {
		j, err = openJournal(ctx, cfg.Geocode.Journal, seed)
		if err != nil {
			return nil, err
		}
		defer j.Close() //nolint:errcheck
	}

	client, err := newGeocodeClient()
	if err != nil {
		return nil, err
	}

	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Geocode.MaxAttempts
	ropts := []resolve.Option{
		resolve.WithRetry(retry),
		resolve.WithMetrics(m),
		resolve.WithProgress(newProgressBar),
		resolve.WithLogger(log),
	}
	if j != nil {
		ropts = append(ropts, resolve.WithJournal(j))
	}

	log.Info("seed loaded",
		zap.String("cache", seedPath),
		zap.Int("entries", len(seed)),
	)

	out, _, err := resolve.New(client, cfg.Geocode.Delay(), ropts...).Resolve(ctx, normalized, seed)
	if err != nil {
		if j != nil {
			_ = j.FinishRun(context.WithoutCancel(ctx), "interrupted")
		}
		return nil, err
	}

	if err := out.Write(opts.output); err != nil {
		return nil, err
	}
	log.Info("wrote resolved directory", zap.String("output", opts.output), zap.Int("stores", len(out)))

	if j != nil {
		if err := j.FinishRun(ctx, "complete"); err != nil {
			return nil, err
		}
		if err := j.Clear(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// mergeArtifactSeed adds entries recovered from a generated Go file to seed.
// JSON seed entries win. A missing artifact adds nothing.
func mergeArtifactSeed(seed directory.Directory, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zap.L().Warn("seed artifact not found, continuing without it", zap.String("path", path))
			return nil
		}
		return eris.Wrapf(err, "geocode: open seed artifact %s", path)
	}
	defer f.Close() //nolint:errcheck

	recovered, err := emit.ParseArtifact(f)
	if err != nil {
		return err
	}
	added := 0
	for addr, e := range recovered {
		if _, ok := seed[addr]; !ok {
			seed[addr] = e
			added++
		}
	}
	zap.L().Info("seeded from artifact", zap.String("path", path), zap.Int("added", added))
	return nil
}

// openJournal opens the journal, folds entries left by an interrupted run
// into seed and starts a new run.
func openJournal(ctx context.Context, path string, seed directory.Directory) (*journal.Journal, error) {
	j, err := journal.Open(path)
	if err != nil {
		return nil, err
	}
	if err := j.Migrate(ctx); err != nil {
		j.Close() //nolint:errcheck
		return nil, err
	}
	pending, err := j.Load(ctx)
	if err != nil {
		j.Close() //nolint:errcheck
		return nil, err
	}
	for addr, e := range pending {
		seed[addr] = e
	}
	runID, err := j.StartRun(ctx)
	if err != nil {
		j.Close() //nolint:errcheck
		return nil, err
	}
	zap.L().Info("journal opened",
		zap.String("path", path),
		zap.String("run_id", runID),
		zap.Int("resumed", len(pending)),
	)
	return j, nil
}

func newGeocodeClient() (geocode.Client, error) {
	g := cfg.Geocode
	return geocode.NewClient(g.Provider,
		geocode.WithBaseURL(g.BaseURL),
		geocode.WithUserAgent(g.UserAgent),
		geocode.WithEmail(g.Email),
		geocode.WithCountryCodes(g.CountryCodes),
		geocode.WithAPIKey(g.GoogleKey),
		geocode.WithTimeout(time.Duration(g.TimeoutSecs)*time.Second),
	)
}

// Package resolve turns a list of wanted addresses into a resolved
// directory, reusing a seed cache and geocoding only what it has not seen.
package resolve

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/clock"
	"github.com/sells-group/storegeo/internal/directory"
	"github.com/sells-group/storegeo/internal/metrics"
	"github.com/sells-group/storegeo/internal/resilience"
	"github.com/sells-group/storegeo/pkg/geocode"
)

// Provenance records where a resolved address came from.
type Provenance string

// Provenance values.
const (
	Cached   Provenance = "cached"
	Geocoded Provenance = "geocoded"
	Failed   Provenance = "failed"
)

// Record is the outcome for one distinct wanted address.
type Record struct {
	Address    string
	Provenance Provenance
	Entry      directory.Entry
	Err        error
}

// Report summarizes a Resolve call. Total is the number of keys in the
// resolved directory, so Total == Cached + New.
type Report struct {
	Cached  int
	New     int
	Failed  int
	Total   int
	Records []Record
}

// Journal receives each newly geocoded entry as soon as it is resolved.
type Journal interface {
	Record(ctx context.Context, address string, e directory.Entry) error
}

// Progress is advanced once per provider lookup.
type Progress interface {
	Add(n int) error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used by the gate and retry backoff.
func WithClock(c clock.Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithGate shares an existing gate instead of creating one.
func WithGate(g *Gate) Option {
	return func(r *Resolver) { r.gate = g }
}

// WithRetry sets the retry policy for transient lookup failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(r *Resolver) { r.retry = cfg }
}

// WithMetrics records lookup counters on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithJournal appends every geocoded entry to j.
func WithJournal(j Journal) Option {
	return func(r *Resolver) { r.journal = j }
}

// WithProgress reports lookups to the Progress returned by newBar, which
// is called once per Resolve with the number of addresses to geocode.
func WithProgress(newBar func(total int) Progress) Option {
	return func(r *Resolver) { r.newProgress = newBar }
}

// WithLogger sets the logger. Default: zap.L().
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.log = l }
}

// Resolver resolves addresses sequentially through a single geocode client.
type Resolver struct {
	client      geocode.Client
	clock       clock.Clock
	gate        *Gate
	retry       resilience.RetryConfig
	metrics     *metrics.Recorder
	journal     Journal
	newProgress func(total int) Progress
	log         *zap.Logger
}

// New creates a Resolver that spaces provider requests by at least delay.
func New(client geocode.Client, delay time.Duration, opts ...Option) *Resolver {
	r := &Resolver{
		client: client,
		retry:  resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.clock == nil {
		r.clock = clock.Real()
	}
	if r.gate == nil {
		r.gate = NewGate(delay, r.clock)
	}
	if r.retry.Clock == nil {
		r.retry.Clock = r.clock
	}
	if r.retry.OnRetry == nil {
		r.retry.OnRetry = resilience.RetryLogger(client.Name(), "geocode")
	}
	if r.log == nil {
		r.log = zap.L()
	}
	return r
}

// Plan splits the distinct wanted addresses, in input order, into those
// present in seed and those that need a provider lookup.
func Plan(wanted []string, seed directory.Directory) (cached, toResolve []string) {
	seen := make(map[string]struct{}, len(wanted))
	for _, addr := range wanted {
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		if _, ok := seed[addr]; ok {
			cached = append(cached, addr)
		} else {
			toResolve = append(toResolve, addr)
		}
	}
	return cached, toResolve
}

// Resolve returns a directory holding exactly the wanted addresses that
// were found in seed or geocoded successfully. Seed entries are copied
// verbatim without touching the provider. Failed lookups are logged and
// left out.
//
// If ctx is cancelled mid-run, the entries resolved so far are returned
// along with the context error.
func (r *Resolver) Resolve(ctx context.Context, wanted []string, seed directory.Directory) (directory.Directory, Report, error) {
	cached, toResolve := Plan(wanted, seed)

	out := make(directory.Directory, len(cached)+len(toResolve))
	var report Report
	for _, addr := range cached {
		e := seed[addr]
		out[addr] = e
		report.Cached++
		report.Records = append(report.Records, Record{Address: addr, Provenance: Cached, Entry: e})
		r.metrics.Lookup(string(Cached))
	}

	r.log.Info("resolving addresses",
		zap.Int("wanted", len(cached)+len(toResolve)),
		zap.Int("cached", len(cached)),
		zap.Int("to_geocode", len(toResolve)),
		zap.String("provider", r.client.Name()),
		zap.Duration("delay", r.gate.Interval()),
	)

	var bar Progress
	if r.newProgress != nil && len(toResolve) > 0 {
		bar = r.newProgress(len(toResolve))
	}

	for _, addr := range toResolve {
		if err := ctx.Err(); err != nil {
			return out, r.finish(report), eris.Wrap(err, "resolve: interrupted")
		}

		m, err := r.lookup(ctx, addr)
		if err != nil && ctx.Err() != nil {
			return out, r.finish(report), eris.Wrap(ctx.Err(), "resolve: interrupted")
		}

		if err != nil {
			reason := geocode.ReasonOf(err)
			report.Failed++
			report.Records = append(report.Records, Record{Address: addr, Provenance: Failed, Err: err})
			r.metrics.Lookup(string(Failed))
			r.metrics.Failure(string(reason))
			r.log.Warn("geocode failed",
				zap.String("address", addr),
				zap.String("reason", string(reason)),
				zap.Error(err),
			)
		} else {
			e := directory.Entry{
				Coordinate:  directory.Coordinate{Latitude: m.Latitude, Longitude: m.Longitude},
				DisplayName: m.Label,
			}
			out[addr] = e
			report.New++
			report.Records = append(report.Records, Record{Address: addr, Provenance: Geocoded, Entry: e})
			r.metrics.Lookup(string(Geocoded))
			r.log.Debug("geocoded",
				zap.String("address", addr),
				zap.Float64("lat", m.Latitude),
				zap.Float64("lon", m.Longitude),
			)
			if r.journal != nil {
				if jerr := r.journal.Record(ctx, addr, e); jerr != nil {
					r.log.Warn("journal write failed", zap.String("address", addr), zap.Error(jerr))
				}
			}
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	report = r.finish(report)
	r.log.Info("geocode complete",
		zap.Int("new", report.New),
		zap.Int("cached", report.Cached),
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed),
	)
	return out, report, nil
}

func (r *Resolver) finish(report Report) Report {
	report.Total = report.Cached + report.New
	return report
}

// lookup issues one gated query, retrying transient failures per the
// retry policy. Each attempt passes through the gate.
func (r *Resolver) lookup(ctx context.Context, addr string) (*geocode.Match, error) {
	m, err := resilience.DoVal(ctx, r.retry, func(ctx context.Context) (*geocode.Match, error) {
		if err := r.gate.Wait(ctx); err != nil {
			return nil, err
		}
		start := r.clock.Now()
		m, err := r.client.Geocode(ctx, addr)
		r.metrics.ObserveRequest(r.clock.Now().Sub(start))
		r.gate.Release()
		return m, err
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &geocode.LookupError{Provider: r.client.Name(), Query: addr, Reason: geocode.ReasonUnknown}
	}
	return m, nil
}

// Package collect scrapes store addresses from a store-locator search form.
package collect

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/sells-group/storegeo/internal/directory"
	"github.com/sells-group/storegeo/internal/fetcher"
	"github.com/sells-group/storegeo/internal/metrics"
)

// DefaultFormField is the form field the search term is submitted under.
const DefaultFormField = "productSearch"

// ErrNoTerms is returned when Collect is called without search terms.
var ErrNoTerms = eris.New("collect: no search terms")

// Options configures a Collector.
type Options struct {
	SearchURL string
	FormField string
	Referer   string
	// FailFast aborts on the first failed search instead of skipping it.
	FailFast bool
	Metrics  *metrics.Recorder
}

// TermFailure records a search term whose request or response failed.
type TermFailure struct {
	Term string
	Err  error
}

// Result is the outcome of a Collect call.
type Result struct {
	// Addresses is the sorted, de-duplicated union across all terms.
	Addresses []string
	Failed    []TermFailure
}

// Collector submits search terms and gathers the address set.
type Collector struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// New creates a Collector posting through f.
func New(f fetcher.Fetcher, opts Options) *Collector {
	if opts.FormField == "" {
		opts.FormField = DefaultFormField
	}
	return &Collector{fetcher: f, opts: opts}
}

// Collect submits each term in order and unions the addresses found.
// A failed term is logged and skipped unless FailFast is set. If every
// term fails there is nothing to write and an error is returned.
func (c *Collector) Collect(ctx context.Context, terms []string) (*Result, error) {
	if len(terms) == 0 {
		return nil, ErrNoTerms
	}

	var (
		all    []string
		result Result
	)
	for i, term := range terms {
		addrs, err := c.search(ctx, term)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "collect: interrupted")
			}
			c.opts.Metrics.Search(false)
			if c.opts.FailFast {
				return nil, eris.Wrapf(err, "collect: search %q", term)
			}
			zap.L().Warn("search failed, skipping term",
				zap.String("term", term),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, TermFailure{Term: term, Err: err})
			continue
		}

		c.opts.Metrics.Search(true)
		zap.L().Info("search complete",
			zap.String("term", term),
			zap.Int("index", i+1),
			zap.Int("of", len(terms)),
			zap.Int("addresses", len(addrs)),
		)
		all = append(all, addrs...)
	}

	if len(result.Failed) == len(terms) {
		return nil, eris.Wrapf(result.Failed[0].Err, "collect: all %d searches failed", len(terms))
	}

	result.Addresses = directory.SortedUnique(all)
	c.opts.Metrics.SetAddresses(len(result.Addresses))
	return &result, nil
}

func (c *Collector) search(ctx context.Context, term string) ([]string, error) {
	form := url.Values{c.opts.FormField: {term}}
	header := http.Header{}
	if c.opts.Referer != "" {
		header.Set("Referer", c.opts.Referer)
	}

	resp, err := c.fetcher.PostForm(ctx, c.opts.SearchURL, form, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, eris.Wrap(err, "collect: decode charset")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "collect: read body")
	}

	addrs, err := ExtractAddresses(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		if bt := DetectBlock(resp.Header, body); bt != BlockNone {
			return nil, &BlockedError{Type: bt, URL: c.opts.SearchURL}
		}
	}
	return addrs, nil
}

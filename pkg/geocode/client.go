// Package geocode resolves free-form addresses to coordinates via Nominatim
// (default), the US Census one-line geocoder, or the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Provider names accepted by NewClient.
const (
	ProviderNominatim = "nominatim"
	ProviderCensus    = "census"
	ProviderGoogle    = "google"
)

// Client geocodes a single free-form address.
//
// Geocode returns either a non-nil Match or a non-nil error, never both.
// Every failure is a *LookupError so callers can tell an empty result
// apart from a transport or decode problem.
type Client interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Match, error)
}

// Match is a successful geocode: the first candidate returned by the provider.
type Match struct {
	Latitude  float64
	Longitude float64
	Label     string // provider's display name for the match
	Source    string // provider name
	Quality   string // "rooftop", "range", "centroid", "approximate"
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client. The client is used as given;
// WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithBaseURL overrides the provider endpoint root.
func WithBaseURL(u string) Option {
	return func(g *geocoder) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithUserAgent sets the client-identifying User-Agent header.
// Nominatim's usage policy rejects requests without one.
func WithUserAgent(ua string) Option {
	return func(g *geocoder) {
		g.userAgent = ua
	}
}

// WithEmail sets the contact email sent to Nominatim.
func WithEmail(email string) Option {
	return func(g *geocoder) {
		g.email = email
	}
}

// WithCountryCodes restricts Nominatim results to a comma-separated list of
// ISO 3166-1 alpha-2 codes.
func WithCountryCodes(codes string) Option {
	return func(g *geocoder) {
		g.countryCodes = codes
	}
}

// WithAPIKey sets the Google Geocoding API key.
func WithAPIKey(key string) Option {
	return func(g *geocoder) {
		g.apiKey = key
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no
// effect when a custom client is given with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(g *geocoder) {
		if d > 0 {
			g.timeout = d
		}
	}
}

const defaultTimeout = 30 * time.Second

type geocoder struct {
	provider     string
	httpClient   *http.Client
	timeout      time.Duration
	baseURL      string
	userAgent    string
	email        string
	countryCodes string
	apiKey       string
}

// NewClient creates a geocoding Client for the named provider.
func NewClient(provider string, opts ...Option) (Client, error) {
	g := &geocoder{
		provider:  provider,
		timeout:   defaultTimeout,
		userAgent: "storegeo/1.0",
	}
	switch provider {
	case ProviderNominatim:
		g.baseURL = nominatimBaseURL
	case ProviderCensus:
		g.baseURL = censusBaseURL
	case ProviderGoogle:
		g.baseURL = googleBaseURL
	default:
		return nil, eris.Errorf("geocode: unknown provider %q", provider)
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: g.timeout}
	}
	if provider == ProviderGoogle && g.apiKey == "" {
		return nil, eris.New("geocode: google api key not configured")
	}
	return g, nil
}

// Name implements Client.
func (g *geocoder) Name() string { return g.provider }

// Geocode implements Client.
func (g *geocoder) Geocode(ctx context.Context, query string) (*Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, g.fail(query, ReasonNoResult, 0, eris.New("empty query"))
	}

	var (
		m   *Match
		err error
	)
	switch g.provider {
	case ProviderCensus:
		m, err = g.geocodeCensus(ctx, query)
	case ProviderGoogle:
		m, err = g.geocodeGoogle(ctx, query)
	default:
		m, err = g.geocodeNominatim(ctx, query)
	}
	if err != nil {
		return nil, err
	}

	if verr := validateCoordinates(m.Latitude, m.Longitude); verr != nil {
		return nil, g.fail(query, ReasonInvalid, 0, verr)
	}
	return m, nil
}

// getJSON issues a GET and decodes the JSON body into out. Failures come
// back as *LookupError tagged with the matching reason.
func (g *geocoder) getJSON(ctx context.Context, query, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return g.fail(query, ReasonTransport, 0, eris.Wrap(err, "build request"))
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return g.fail(query, ReasonTransport, 0, eris.Wrap(err, "request"))
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return g.fail(query, ReasonStatus, resp.StatusCode,
			eris.Errorf("%s returned status %d", g.provider, resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return g.fail(query, ReasonTransport, 0, eris.Wrap(err, "read body"))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return g.fail(query, ReasonDecode, 0, eris.Wrap(err, "parse response"))
	}
	return nil
}

func (g *geocoder) fail(query string, reason Reason, status int, err error) *LookupError {
	return &LookupError{
		Provider:   g.provider,
		Query:      query,
		Reason:     reason,
		StatusCode: status,
		Err:        err,
	}
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return eris.New("coordinates must be numbers")
	}
	if lat < -90 || lat > 90 {
		return eris.Errorf("latitude must be between -90 and 90 (got %f)", lat)
	}
	if lon < -180 || lon > 180 {
		return eris.Errorf("longitude must be between -180 and 180 (got %f)", lon)
	}
	return nil
}

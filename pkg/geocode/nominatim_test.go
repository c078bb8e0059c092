package geocode

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sandyForkResponse = `[{
	"place_id": 1234,
	"lat": "35.8719206",
	"lon": "-78.6232906",
	"display_name": "7200, Sandy Fork Road, Raleigh, Wake County, North Carolina, 27609, United States",
	"class": "building",
	"type": "retail"
}]`

func TestNominatimGeocode_Success(t *testing.T) {
	srv, requests := newJSONServer(t, http.StatusOK, sandyForkResponse)

	c, err := NewClient(ProviderNominatim,
		WithBaseURL(srv.URL),
		WithUserAgent("BourbonTracker/1.0 (geocoding update script)"),
	)
	require.NoError(t, err)

	m, err := c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 35.8719206, m.Latitude, 1e-9)
	assert.InDelta(t, -78.6232906, m.Longitude, 1e-9)
	assert.Contains(t, m.Label, "Sandy Fork Road")
	assert.Equal(t, ProviderNominatim, m.Source)
	assert.Equal(t, "rooftop", m.Quality)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/search", reqs[0].Path)
	assert.Equal(t, "7200 Sandy Fork Rd. Raleigh, NC 27609", reqs[0].Query["q"])
	assert.Equal(t, "json", reqs[0].Query["format"])
	assert.Equal(t, "1", reqs[0].Query["limit"])
	assert.Equal(t, "BourbonTracker/1.0 (geocoding update script)", reqs[0].UserAgent)
	assert.NotContains(t, reqs[0].Query, "countrycodes")
}

func TestNominatimGeocode_OptionalParams(t *testing.T) {
	srv, requests := newJSONServer(t, http.StatusOK, sandyForkResponse)

	c, err := NewClient(ProviderNominatim,
		WithBaseURL(srv.URL+"/"),
		WithCountryCodes("us"),
		WithEmail("ops@example.com"),
	)
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.NoError(t, err)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/search", reqs[0].Path)
	assert.Equal(t, "us", reqs[0].Query["countrycodes"])
	assert.Equal(t, "ops@example.com", reqs[0].Query["email"])
}

func TestNominatimGeocode_EmptyResult(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `[]`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	m, err := c.Geocode(context.Background(), "1 Nowhere Ln. Nowhere, NC 00000")
	assert.Nil(t, m)
	require.Error(t, err)
	assert.Equal(t, ReasonNoResult, ReasonOf(err))
	assert.False(t, IsTransient(err))
}

func TestNominatimGeocode_ServerError(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusServiceUnavailable, `busy`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	m, err := c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	assert.Nil(t, m)
	require.Error(t, err)

	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ReasonStatus, le.Reason)
	assert.Equal(t, http.StatusServiceUnavailable, le.StatusCode)
	assert.True(t, IsTransient(err))
}

func TestNominatimGeocode_Forbidden(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusForbidden, `blocked`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.Error(t, err)
	assert.Equal(t, ReasonStatus, ReasonOf(err))
	assert.False(t, IsTransient(err))
}

func TestNominatimGeocode_MalformedJSON(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `{not json`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.Error(t, err)
	assert.Equal(t, ReasonDecode, ReasonOf(err))
}

func TestNominatimGeocode_BadCoordinateString(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `[{"lat": "north", "lon": "-78.6", "display_name": "x"}]`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.Error(t, err)
	assert.Equal(t, ReasonDecode, ReasonOf(err))
}

func TestNominatimGeocode_OutOfRange(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `[{"lat": "135.87", "lon": "-78.6", "display_name": "x"}]`)

	c, err := NewClient(ProviderNominatim, WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.Error(t, err)
	assert.Equal(t, ReasonInvalid, ReasonOf(err))
}

func TestNominatimGeocode_TransportError(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `[]`)
	url := srv.URL
	srv.Close()

	c, err := NewClient(ProviderNominatim, WithBaseURL(url))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.Error(t, err)
	assert.Equal(t, ReasonTransport, ReasonOf(err))
	assert.True(t, IsTransient(err))
}

func TestNominatimGeocode_DefaultEndpoint(t *testing.T) {
	srv, requests := newJSONServer(t, http.StatusOK, sandyForkResponse)

	c, err := NewClient(ProviderNominatim,
		WithHTTPClient(newRewriteClient(srv.URL, nominatimBaseURL)),
	)
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "7200 Sandy Fork Rd. Raleigh, NC 27609")
	require.NoError(t, err)
	require.Len(t, requests(), 1)
	assert.Equal(t, "storegeo/1.0", requests()[0].UserAgent)
}

func TestNominatimQuality(t *testing.T) {
	assert.Equal(t, "rooftop", nominatimQuality("building", "yes"))
	assert.Equal(t, "rooftop", nominatimQuality("place", "house"))
	assert.Equal(t, "range", nominatimQuality("highway", "residential"))
	assert.Equal(t, "centroid", nominatimQuality("place", "town"))
	assert.Equal(t, "approximate", nominatimQuality("shop", "alcohol"))
}

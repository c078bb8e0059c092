package geocode

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCensusGeocode_Success(t *testing.T) {
	srv, requests := newJSONServer(t, http.StatusOK, `{
		"result": {
			"addressMatches": [{
				"coordinates": {"x": -78.6517657, "y": 35.7345287},
				"matchedAddress": "3320 OLYMPIA DR, RALEIGH, NC, 27603",
				"tigerLine": {"side": "L", "tigerLineId": "123"}
			}]
		}
	}`)

	c, err := NewClient(ProviderCensus, WithBaseURL(srv.URL))
	require.NoError(t, err)

	m, err := c.Geocode(context.Background(), "3320 Olympia Dr. Raleigh, NC 27603")
	require.NoError(t, err)
	assert.InDelta(t, 35.7345287, m.Latitude, 1e-9)
	assert.InDelta(t, -78.6517657, m.Longitude, 1e-9)
	assert.Equal(t, "3320 OLYMPIA DR, RALEIGH, NC, 27603", m.Label)
	assert.Equal(t, ProviderCensus, m.Source)
	assert.Equal(t, "rooftop", m.Quality)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/locations/onelineaddress", reqs[0].Path)
	assert.Equal(t, "3320 Olympia Dr. Raleigh, NC 27603", reqs[0].Query["address"])
	assert.Equal(t, censusBenchmark, reqs[0].Query["benchmark"])
}

func TestCensusGeocode_NoMatch(t *testing.T) {
	srv, _ := newJSONServer(t, http.StatusOK, `{"result": {"addressMatches": []}}`)

	c, err := NewClient(ProviderCensus, WithBaseURL(srv.URL))
	require.NoError(t, err)

	m, err := c.Geocode(context.Background(), "123 Nowhere St Faketown, XX 00000")
	assert.Nil(t, m)
	assert.Equal(t, ReasonNoResult, ReasonOf(err))
}

func TestCensusGeocode_DefaultEndpoint(t *testing.T) {
	srv, requests := newJSONServer(t, http.StatusOK, `{"result": {"addressMatches": [{"coordinates": {"x": -77.0365, "y": 38.8977}}]}}`)

	c, err := NewClient(ProviderCensus, WithHTTPClient(newRewriteClient(srv.URL, censusBaseURL)))
	require.NoError(t, err)

	_, err = c.Geocode(context.Background(), "1600 Pennsylvania Ave NW, Washington, DC 20500")
	require.NoError(t, err)
	require.Len(t, requests(), 1)
	assert.Equal(t, "/locations/onelineaddress", requests()[0].Path)
}

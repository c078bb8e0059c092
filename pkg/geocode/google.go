package geocode

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const googleBaseURL = "https://maps.googleapis.com/maps/api/geocode"

// googleGeocodeResponse is the JSON response from the Google Geocoding API.
type googleGeocodeResponse struct {
	Results      []googleResult `json:"results"`
	Status       string         `json:"status"`
	ErrorMessage string         `json:"error_message"`
}

type googleResult struct {
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
		LocationType string `json:"location_type"`
	} `json:"geometry"`
	FormattedAddress string `json:"formatted_address"`
}

// geocodeGoogle geocodes a single address using the Google Geocoding API.
func (g *geocoder) geocodeGoogle(ctx context.Context, query string) (*Match, error) {
	params := url.Values{
		"address": {query},
		"key":     {g.apiKey},
	}

	var googleResp googleGeocodeResponse
	if err := g.getJSON(ctx, query, g.baseURL+"/json?"+params.Encode(), &googleResp); err != nil {
		return nil, err
	}

	switch googleResp.Status {
	case "OK":
	case "ZERO_RESULTS", "":
		return nil, g.fail(query, ReasonNoResult, 0, eris.New("zero results"))
	case "OVER_QUERY_LIMIT", "UNKNOWN_ERROR":
		// Google reports quota and backend trouble in-band with HTTP 200.
		return nil, g.fail(query, ReasonTransport, 0,
			eris.Errorf("google status %s: %s", googleResp.Status, googleResp.ErrorMessage))
	default:
		return nil, g.fail(query, ReasonStatus, 0,
			eris.Errorf("google status %s: %s", googleResp.Status, googleResp.ErrorMessage))
	}
	if len(googleResp.Results) == 0 {
		return nil, g.fail(query, ReasonNoResult, 0, eris.New("zero results"))
	}

	result := googleResp.Results[0]
	return &Match{
		Latitude:  result.Geometry.Location.Lat,
		Longitude: result.Geometry.Location.Lng,
		Label:     result.FormattedAddress,
		Source:    ProviderGoogle,
		Quality:   googleLocationTypeToQuality(result.Geometry.LocationType),
	}, nil
}

// googleLocationTypeToQuality maps Google's location_type to our quality taxonomy.
func googleLocationTypeToQuality(locType string) string {
	switch strings.ToUpper(locType) {
	case "ROOFTOP":
		return "rooftop"
	case "RANGE_INTERPOLATED":
		return "range"
	case "GEOMETRIC_CENTER":
		return "centroid"
	default:
		return "approximate"
	}
}

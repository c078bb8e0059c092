package geocode

import (
	"context"
	"net/url"

	"github.com/rotisserie/eris"
)

const (
	censusBaseURL   = "https://geocoding.geo.census.gov/geocoder"
	censusBenchmark = "Public_AR_Current"
)

// censusOneLineResponse is the JSON response from the Census single-address API.
type censusOneLineResponse struct {
	Result struct {
		AddressMatches []censusAddressMatch `json:"addressMatches"`
	} `json:"result"`
}

type censusAddressMatch struct {
	Coordinates struct {
		X float64 `json:"x"` // longitude
		Y float64 `json:"y"` // latitude
	} `json:"coordinates"`
	MatchedAddress string `json:"matchedAddress"`
}

// geocodeCensus geocodes a single address using the Census one-line API.
func (g *geocoder) geocodeCensus(ctx context.Context, query string) (*Match, error) {
	params := url.Values{
		"address":   {query},
		"benchmark": {censusBenchmark},
		"format":    {"json"},
	}

	var censusResp censusOneLineResponse
	reqURL := g.baseURL + "/locations/onelineaddress?" + params.Encode()
	if err := g.getJSON(ctx, query, reqURL, &censusResp); err != nil {
		return nil, err
	}

	if len(censusResp.Result.AddressMatches) == 0 {
		return nil, g.fail(query, ReasonNoResult, 0, eris.New("no address matches"))
	}

	match := censusResp.Result.AddressMatches[0]
	return &Match{
		Latitude:  match.Coordinates.Y,
		Longitude: match.Coordinates.X,
		Label:     match.MatchedAddress,
		Source:    ProviderCensus,
		Quality:   "rooftop", // Census one-line matches are exact
	}, nil
}

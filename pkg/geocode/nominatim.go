package geocode

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

// nominatimPlace is one entry of the Nominatim /search JSON array.
// Coordinates arrive as decimal strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Class       string `json:"class"`
	Type        string `json:"type"`
}

// geocodeNominatim geocodes a single address with the Nominatim search API.
func (g *geocoder) geocodeNominatim(ctx context.Context, query string) (*Match, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	if g.countryCodes != "" {
		params.Set("countrycodes", g.countryCodes)
	}
	if g.email != "" {
		params.Set("email", g.email)
	}

	var places []nominatimPlace
	if err := g.getJSON(ctx, query, g.baseURL+"/search?"+params.Encode(), &places); err != nil {
		return nil, err
	}

	if len(places) == 0 {
		return nil, g.fail(query, ReasonNoResult, 0, eris.New("no candidates"))
	}

	place := places[0]
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, g.fail(query, ReasonDecode, 0, eris.Wrapf(err, "parse lat %q", place.Lat))
	}
	lon, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, g.fail(query, ReasonDecode, 0, eris.Wrapf(err, "parse lon %q", place.Lon))
	}

	return &Match{
		Latitude:  lat,
		Longitude: lon,
		Label:     place.DisplayName,
		Source:    ProviderNominatim,
		Quality:   nominatimQuality(place.Class, place.Type),
	}, nil
}

// nominatimQuality maps the OSM class/type of a match to our quality taxonomy.
func nominatimQuality(class, typ string) string {
	switch {
	case class == "building" || typ == "house":
		return "rooftop"
	case class == "highway":
		return "range"
	case class == "place" || class == "boundary":
		return "centroid"
	default:
		return "approximate"
	}
}

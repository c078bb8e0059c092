// Package directory holds the store directory data model: normalized
// addresses, their coordinates, and the JSON files they persist to.
package directory

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// Coordinate is a WGS84 latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Validate reports a coordinate that is not a finite WGS84 position.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) || math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return eris.New("coordinates must be finite numbers")
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return eris.Errorf("latitude must be between -90 and 90 (got %f)", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return eris.Errorf("longitude must be between -180 and 180 (got %f)", c.Longitude)
	}
	return nil
}

// Entry is a resolved address: its coordinate plus the geocoder's label.
type Entry struct {
	Coordinate
	DisplayName string `json:"display_name,omitempty"`
}

// UnmarshalJSON requires both lat and lon, so an entry read from disk can
// never stand in for a real position with a zero coordinate.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return eris.New("entry is null")
	}
	var raw struct {
		Latitude    *float64 `json:"lat"`
		Longitude   *float64 `json:"lon"`
		DisplayName string   `json:"display_name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return eris.New("entry is missing lat or lon")
	}
	c := Coordinate{Latitude: *raw.Latitude, Longitude: *raw.Longitude}
	if err := c.Validate(); err != nil {
		return err
	}
	*e = Entry{Coordinate: c, DisplayName: raw.DisplayName}
	return nil
}

// Directory maps a normalized address to its resolved entry. It serves as
// both the seed cache read at the start of a run and the resolved map
// written at the end.
type Directory map[string]Entry

// Lookup returns the coordinate for address. A missing address yields the
// zero Coordinate and false.
func (d Directory) Lookup(address string) (Coordinate, bool) {
	if e, ok := d[address]; ok {
		return e.Coordinate, true
	}
	return Coordinate{}, false
}

// Addresses returns the directory keys in ascending byte order.
func (d Directory) Addresses() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeAddress collapses whitespace runs to a single space, trims the
// ends and applies Unicode NFC so visually equal addresses compare equal.
func NormalizeAddress(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// SortedUnique returns the distinct non-empty values of addrs in ascending
// byte order.
func SortedUnique(addrs []string) []string {
	seen := make(map[string]struct{}, len(addrs))
	out := make([]string, 0, len(addrs))
	for _, a := range addrs {
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

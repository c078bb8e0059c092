package directory

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ToGeoJSON renders the directory as a GeoJSON FeatureCollection of points,
// one feature per address in ascending order.
func ToGeoJSON(d Directory) ([]byte, error) {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(d)),
	}
	for _, addr := range d.Addresses() {
		e := d[addr]
		// GeoJSON orders positions as longitude, latitude.
		pt := geom.NewPointFlat(geom.XY, []float64{e.Longitude, e.Latitude})
		props := map[string]interface{}{
			"address": addr,
		}
		if e.DisplayName != "" {
			props["display_name"] = e.DisplayName
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         StoreID(addr),
			Geometry:   pt,
			Properties: props,
		})
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "directory: marshal geojson")
	}
	return data, nil
}

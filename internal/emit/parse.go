package emit

import (
	"io"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/storegeo/internal/directory"
)

// ArtifactDisplayName labels entries recovered from an artifact, which
// does not carry the geocoder's display name.
const ArtifactDisplayName = "Existing"

var entryPattern = regexp.MustCompile(
	`"((?:[^"\\\n]|\\.)*)":\s*\{Latitude:\s*(-?[0-9.eE+-]+),\s*Longitude:\s*(-?[0-9.eE+-]+)\}`)

// ParseArtifact recovers the address-to-coordinate entries from a
// previously emitted artifact. Lines that do not look like entries are
// ignored; an entry whose key or numbers fail to parse is an error.
func ParseArtifact(r io.Reader) (directory.Directory, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "emit: read artifact")
	}

	dir := directory.Directory{}
	for _, m := range entryPattern.FindAllSubmatch(src, -1) {
		addr, err := strconv.Unquote(`"` + string(m[1]) + `"`)
		if err != nil {
			return nil, eris.Wrapf(err, "emit: unquote %s", m[1])
		}
		lat, err := strconv.ParseFloat(string(m[2]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "emit: latitude for %q", addr)
		}
		lon, err := strconv.ParseFloat(string(m[3]), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "emit: longitude for %q", addr)
		}
		dir[addr] = directory.Entry{
			Coordinate:  directory.Coordinate{Latitude: lat, Longitude: lon},
			DisplayName: ArtifactDisplayName,
		}
	}
	return dir, nil
}

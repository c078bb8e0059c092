package directory

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
	"github.com/rotisserie/eris"
)

// LoadAddresses reads a JSON array of address strings.
func LoadAddresses(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "directory: read addresses %s", path)
	}
	var addrs []string
	if err := json.Unmarshal(data, &addrs); err != nil {
		return nil, eris.Wrapf(err, "directory: parse addresses %s", path)
	}
	return addrs, nil
}

// WriteAddresses writes addrs as a sorted, de-duplicated JSON array.
func WriteAddresses(path string, addrs []string) error {
	data, err := json.MarshalIndent(SortedUnique(addrs), "", "  ")
	if err != nil {
		return eris.Wrap(err, "directory: marshal addresses")
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// Load reads a resolved directory from a JSON object keyed by address.
// Every entry must carry a valid lat and lon; one that does not makes the
// whole file unusable.
func Load(path string) (Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "directory: read %s", path)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "directory: parse %s", path)
	}
	d := make(Directory, len(raw))
	for addr, msg := range raw {
		var e Entry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, eris.Wrapf(err, "directory: parse %s: entry %q", path, addr)
		}
		d[addr] = e
	}
	return d, nil
}

// LoadSeed is Load for an optional seed cache: a missing file is an empty
// directory rather than an error.
func LoadSeed(path string) (Directory, error) {
	if path == "" {
		return make(Directory), nil
	}
	d, err := Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(Directory), nil
		}
		return nil, err
	}
	return d, nil
}

// Write persists the directory as indented JSON with sorted keys.
func (d Directory) Write(path string) error {
	if d == nil {
		d = Directory{}
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return eris.Wrap(err, "directory: marshal")
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// WriteFileAtomic replaces path with data so readers never observe a
// partially written file. The data is synced before the rename.
func WriteFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "directory: write %s", path)
	}
	return nil
}

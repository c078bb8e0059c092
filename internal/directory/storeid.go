package directory

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// StoreID derives a stable slug from the street portion of an address
// (everything before the first comma), e.g. "7200-sandy-fork-rd-raleigh".
func StoreID(address string) string {
	street, _, _ := strings.Cut(address, ",")
	street = nonAlnum.ReplaceAllString(strings.TrimSpace(street), "-")
	street = strings.ToLower(strings.Trim(street, "-"))
	if street == "" {
		return "unknown"
	}
	return street
}

// StoreIndex maps a store ID back to the address it was derived from.
type StoreIndex map[string]string

// NewStoreIndex builds the store ID → address mapping for d. When two
// addresses share an ID the lexicographically first address wins.
func NewStoreIndex(d Directory) StoreIndex {
	idx := make(StoreIndex, len(d))
	for _, addr := range d.Addresses() {
		id := StoreID(addr)
		if _, taken := idx[id]; taken {
			continue
		}
		idx[id] = addr
	}
	return idx
}

// Lookup returns the address for a store ID.
func (idx StoreIndex) Lookup(id string) (string, bool) {
	addr, ok := idx[strings.ToLower(strings.TrimSpace(id))]
	return addr, ok
}

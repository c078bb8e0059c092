package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/storegeo/internal/directory"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <stores.json> <address-or-store-id>",
	Short: "Print the coordinates for an address or store ID",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := directory.Load(args[0])
		if err != nil {
			return err
		}
		return runLookup(cmd.OutOrStdout(), dir, args[1])
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

type lookupResult struct {
	Address     string  `json:"address"`
	StoreID     string  `json:"store_id"`
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	DisplayName string  `json:"display_name,omitempty"`
}

// runLookup resolves key as an exact address first, then as a store ID.
func runLookup(w io.Writer, dir directory.Directory, key string) error {
	addr := directory.NormalizeAddress(key)
	if _, ok := dir[addr]; !ok {
		var found bool
		addr, found = directory.NewStoreIndex(dir).Lookup(key)
		if !found {
			return eris.Errorf("lookup: %q not found", key)
		}
	}

	e := dir[addr]
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(lookupResult{
		Address:     addr,
		StoreID:     directory.StoreID(addr),
		Latitude:    e.Latitude,
		Longitude:   e.Longitude,
		DisplayName: e.DisplayName,
	})
}

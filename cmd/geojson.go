package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/storegeo/internal/directory"
)

var geojsonCmd = &cobra.Command{
	Use:   "geojson <stores.json> <stores.geojson>",
	Short: "Export the resolved directory as a GeoJSON FeatureCollection",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := directory.Load(args[0])
		if err != nil {
			return err
		}
		data, err := directory.ToGeoJSON(dir)
		if err != nil {
			return err
		}
		if err := directory.WriteFileAtomic(args[1], data); err != nil {
			return err
		}
		zap.L().Info("wrote geojson",
			zap.String("command", "geojson"),
			zap.String("output", args[1]),
			zap.Int("features", len(dir)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(geojsonCmd)
}
